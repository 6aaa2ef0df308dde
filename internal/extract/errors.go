package extract

import "fmt"

// UnsupportedFormatError 表示扩展名不在受支持的格式集合内。
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: .%s", e.Ext)
}

// DecodeError wraps a decoder library failure for one file. The caller must
// not retry: a corrupt file stays corrupt.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
