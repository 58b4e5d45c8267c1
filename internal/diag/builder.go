package diag

func New(sev Severity, code Code, typeName, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		TypeName: typeName,
		Message:  msg,
		Notes:    nil,
	}
}

func NewError(code Code, typeName, msg string) Diagnostic {
	return New(SevError, code, typeName, msg)
}

func NewWarning(code Code, typeName, msg string) Diagnostic {
	return New(SevWarning, code, typeName, msg)
}

func (d Diagnostic) WithNote(typeName, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{TypeName: typeName, Msg: msg})
	return d
}
