// Package broadcast carries presenter/audience messages over a named channel:
// config and PDF requests from the audience, their responses, and page pushes
// from the presenter.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"pdf-presenter/internal/models"
)

// Sender identifies which side posted a message
type Sender string

const (
	FromPresenter    Sender = "presenter"
	FromPresentation Sender = "presentation"
)

// Command is the wire name of a message variant
type Command string

const (
	CommandGetConfig         Command = "get-config"
	CommandGetConfigResponse Command = "get-config-response"
	CommandGetPDF            Command = "get-pdf"
	CommandGetPDFResponse    Command = "get-pdf-response"
	CommandPageNumber        Command = "send-current-page-number"
)

// ErrUnknownMessage is returned by Decode for frames that are not one of the
// known sender/command pairs.
var ErrUnknownMessage = errors.New("unknown broadcast message")

// Message is one of GetConfig, GetPDF, ConfigResponse, PDFResponse or
// PageNumber. The set is closed.
type Message interface {
	From() Sender
	Command() Command
	isMessage()
}

// GetConfig asks the presenter for the resolved config
type GetConfig struct{}

// GetPDF asks the presenter for the raw PDF bytes
type GetPDF struct{}

// ConfigResponse answers GetConfig
type ConfigResponse struct {
	Config *models.ResolvedConfig
}

// PDFResponse answers GetPDF
type PDFResponse struct {
	Data []byte
}

// PageNumber tells the audience which physical page to show
type PageNumber struct {
	PageNumber int
}

func (GetConfig) From() Sender      { return FromPresentation }
func (GetPDF) From() Sender         { return FromPresentation }
func (ConfigResponse) From() Sender { return FromPresenter }
func (PDFResponse) From() Sender    { return FromPresenter }
func (PageNumber) From() Sender     { return FromPresenter }

func (GetConfig) Command() Command      { return CommandGetConfig }
func (GetPDF) Command() Command         { return CommandGetPDF }
func (ConfigResponse) Command() Command { return CommandGetConfigResponse }
func (PDFResponse) Command() Command    { return CommandGetPDFResponse }
func (PageNumber) Command() Command     { return CommandPageNumber }

func (GetConfig) isMessage()      {}
func (GetPDF) isMessage()         {}
func (ConfigResponse) isMessage() {}
func (PDFResponse) isMessage()    {}
func (PageNumber) isMessage()     {}

// envelope is the JSON frame. PDF bytes travel base64 encoded.
type envelope struct {
	From        Sender                 `json:"from"`
	Command     Command                `json:"command"`
	PdfpcConfig *models.ResolvedConfig `json:"pdfpcConfig,omitempty"`
	PdfData     []byte                 `json:"pdfData,omitempty"`
	PageNumber  *int                   `json:"pageNumber,omitempty"`
}

// Encode serializes a message into its JSON frame
func Encode(m Message) ([]byte, error) {
	env := envelope{From: m.From(), Command: m.Command()}
	switch msg := m.(type) {
	case GetConfig, GetPDF:
	case ConfigResponse:
		if msg.Config == nil {
			return nil, fmt.Errorf("encode %s: missing config", msg.Command())
		}
		env.PdfpcConfig = msg.Config
	case PDFResponse:
		env.PdfData = msg.Data
	case PageNumber:
		page := msg.PageNumber
		env.PageNumber = &page
	default:
		return nil, fmt.Errorf("encode %T: %w", m, ErrUnknownMessage)
	}
	return json.Marshal(env)
}

// Decode parses a JSON frame. The sender must match the command.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode broadcast frame: %w", err)
	}

	var m Message
	switch env.Command {
	case CommandGetConfig:
		m = GetConfig{}
	case CommandGetPDF:
		m = GetPDF{}
	case CommandGetConfigResponse:
		if env.PdfpcConfig == nil {
			return nil, fmt.Errorf("decode %s: missing pdfpcConfig", env.Command)
		}
		m = ConfigResponse{Config: env.PdfpcConfig}
	case CommandGetPDFResponse:
		m = PDFResponse{Data: env.PdfData}
	case CommandPageNumber:
		if env.PageNumber == nil {
			return nil, fmt.Errorf("decode %s: missing pageNumber", env.Command)
		}
		m = PageNumber{PageNumber: *env.PageNumber}
	default:
		return nil, fmt.Errorf("command %q: %w", env.Command, ErrUnknownMessage)
	}

	if m.From() != env.From {
		return nil, fmt.Errorf("command %q from %q: %w", env.Command, env.From, ErrUnknownMessage)
	}
	return m, nil
}
