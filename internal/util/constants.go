package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 面向用户的提示
const (
	MsgValidationError   = "Select a performance level and enter a valid score for every indicator before saving."
	MsgValidationErrorEs = "Debes seleccionar un nivel de desempeño y una calificación válida para cada indicador antes de guardar."
	MsgAccessDenied      = "Access denied: Only teachers and administrators can access this API"
)

// ValidationMessage 按语言返回校验失败提示
func ValidationMessage(lang string) string {
	if lang == "es" {
		return MsgValidationErrorEs
	}
	return MsgValidationError
}
