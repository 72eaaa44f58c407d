package session

// View names a top-level screen of the client.
type View int

const (
	ViewSignIn View = iota + 1
	ViewChat
	ViewUpload
	ViewProfile
	ViewAdmin
)

func (v View) String() string {
	switch v {
	case ViewSignIn:
		return "sign-in"
	case ViewChat:
		return "chat"
	case ViewUpload:
		return "upload"
	case ViewProfile:
		return "profile"
	case ViewAdmin:
		return "admin"
	}
	return "unknown"
}

// Navigator switches the presented view.
type Navigator interface {
	Navigate(v View)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(v View)

func (f NavigatorFunc) Navigate(v View) { f(v) }
