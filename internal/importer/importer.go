// Package importer turns CSV files into transaction parameters. It reads the
// ledger's own export format and plain bank statements.
package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/pennywise/internal/encoding"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// Result is a parsed file, ready to be handed to transaction.Service.ImportBatch.
type Result struct {
	Profile string
	Charset encoding.Charset
	Params  []transaction.CreateParams
}

type Service struct {
	parser *Parser
}

func NewService() *Service {
	return &Service{parser: NewParser()}
}

func (s *Service) Import(r io.Reader) (*Result, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	profile, params, err := s.parser.Parse(utf8r)
	if err != nil {
		return nil, err
	}

	return &Result{Profile: profile, Charset: utf8r.Charset, Params: params}, nil
}
