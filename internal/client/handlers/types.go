package handlers

import "github.com/gin-gonic/gin"

const (
	CodeOk                     string = "OK"
	ErrCodeBadRequest          string = "ERR_BAD_REQUEST"
	ErrCodeUnknownError        string = "ERR_UNKNOWN_ERROR"
	ErrCodeNotFound            string = "ERR_NOT_FOUND"
	ErrCodeEngineNotIdle       string = "ERR_ENGINE_NOT_IDLE"
	ErrCodeSyncRunning         string = "ERR_SYNC_RUNNING"
	ErrCodeCommandNotFound     string = "ERR_COMMAND_NOT_FOUND"
	ErrCodeCommandNotAvailable string = "ERR_COMMAND_NOT_AVAILABLE"
	ErrCodeCommandFailed       string = "ERR_COMMAND_FAILED"
	ErrCodeJournalUnavailable  string = "ERR_JOURNAL_UNAVAILABLE"
)

type ControlPlaneResponse struct {
	Code string `json:"code"`
}

type ControlPlaneError struct {
	ErrorCode string `json:"code"`
	Error     string `json:"error"`
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	c.Error(err)
	c.PureJSON(status, ControlPlaneError{
		ErrorCode: code,
		Error:     err.Error(),
	})
}
