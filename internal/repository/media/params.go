package media

import "io"

type SaveVideoParams struct {
	Filename  string
	Video     io.Reader
	Thumbnail io.Reader
}
