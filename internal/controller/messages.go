package controller

// User-facing notification texts.
const (
	MsgLoginSuccess    = "Login successful!"
	MsgLoginFailed     = "Login failed"
	MsgLoginError      = "An error occurred during login"
	MsgRegisterSuccess = "Registration successful!"
	MsgRegisterFailed  = "Registration failed"
	MsgRegisterError   = "An error occurred during registration"
	MsgLogoutSuccess   = "Logged out successfully"
	MsgLogoutFailed    = "Logout failed"
	MsgLogoutError     = "An error occurred during logout"
	MsgNoImage         = "Please upload an image first"
	MsgNotLoggedIn     = "Please log in first"
	MsgPredictFailed   = "Prediction failed"
	MsgPredictError    = "An error occurred during prediction"
	MsgBusy            = "Please wait for the current request to finish"
)
