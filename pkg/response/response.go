package response

import "github.com/gin-gonic/gin"

// Envelope follows the API's wire shape: every success body carries
// status "success" plus a token, a message, or a data object keyed by
// resource name.
type Envelope struct {
	Status  string      `json:"status"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Data writes a success body with a data payload, e.g.
// {"status":"success","data":{"dogs":[...]}}.
func Data(c *gin.Context, code int, data gin.H) {
	c.JSON(code, Envelope{Status: "success", Data: data})
}

// Message writes a success body with a human-readable message only.
func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, Envelope{Status: "success", Message: msg})
}

// Token writes a success body carrying a freshly issued JWT.
func Token(c *gin.Context, code int, token string) {
	c.JSON(code, Envelope{Status: "success", Token: token})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(204)
}
