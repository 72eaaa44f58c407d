// Package cli implements the interactive docchat shell.
//
// The shell binds terminal commands to the core components: the session
// gate, the conversation store and composer, the upload pipeline and the
// profile and admin services. It is also the Navigator of the session: a
// requested view change is printed and changes the prompt.
//
// Commands are bare words (list, open 2, upload a.pdf, ...). In the chat
// view any line that does not start with a command is sent as a message.
package cli
