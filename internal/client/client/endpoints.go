package client

const (
	endpointLogin    = "/auth/login"
	endpointRegister = "/auth/register"

	endpointGoogleLogin = "/auth/google/login"

	endpointProfile         = "/api/profile/"
	endpointProfilePassword = "/api/profile/password"

	endpointConversations    = "/api/conversations/"
	endpointConversationByID = "/api/conversations/%s"

	endpointChat = "/api/chat"

	endpointUpload    = "/api/upload"
	endpointFilesList = "/api/files/list"

	endpointAdminStats     = "/api/admin/stats/overview"
	endpointAdminUsers     = "/api/admin/users"
	endpointAdminUserBlock = "/api/admin/users/%d/%s"

	endpointStreamChat = "/ws/chat"
)
