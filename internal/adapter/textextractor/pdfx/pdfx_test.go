package pdfx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

func TestExtract_PlainText(t *testing.T) {
	e := New()
	out, err := e.Extract(context.Background(), "resume.txt", []byte("  Ada Lovelace\x00, Go engineer  "))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace, Go engineer", out)
}

func TestExtract_NonPDFExtensionPassesThrough(t *testing.T) {
	e := New()
	out, err := e.Extract(context.Background(), "resume.md", []byte("# Ada\n\nGo engineer"))
	require.NoError(t, err)
	assert.Equal(t, "# Ada\n\nGo engineer", out)
}

func TestExtract_EmptyDocument(t *testing.T) {
	_, err := New().Extract(context.Background(), "resume.pdf", nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), "resume.pdf", []byte("not a pdf at all"))
	require.Error(t, err)
}
