package diag

type Note struct {
	TypeName string
	Msg      string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	TypeName string
	Notes    []Note
}
