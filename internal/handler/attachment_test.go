package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
)

type fakeAttachments struct {
	rows    map[string]model.Attachment
	deleted []string
}

func (f *fakeAttachments) Create(_ context.Context, a model.Attachment) (model.Attachment, error) {
	if f.rows == nil {
		f.rows = map[string]model.Attachment{}
	}
	f.rows[a.UUID] = a
	return a, nil
}

func (f *fakeAttachments) Get(_ context.Context, id string) (model.Attachment, error) {
	a, ok := f.rows[id]
	if !ok {
		return model.Attachment{}, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeAttachments) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTickets struct {
	exists map[string]bool
}

func (f *fakeTickets) Get(_ context.Context, id string) (model.Ticket, error) {
	if f.exists[id] {
		return model.Ticket{UUID: id}, nil
	}
	return model.Ticket{}, sql.ErrNoRows
}

type fakeObjectStore struct {
	puts    []string
	deletes []string
}

func (f *fakeObjectStore) Put(_ context.Context, key string, _ []byte, _ string) error {
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeObjectStore) URL(key string) string { return "https://bucket.example/" + key }

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAttachmentCreate(t *testing.T) {
	store := &fakeObjectStore{}
	attachments := &fakeAttachments{}
	h := &AttachmentHandler{
		Attachments: attachments,
		Tickets:     &fakeTickets{exists: map[string]bool{"t1": true}},
		Store:       store,
	}

	body, contentType := multipartUpload(t, "file", "report.pdf", "pdf-bytes")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/attachments?ticket_uuid=t1", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.puts, 1)

	var resp struct {
		Data []model.Attachment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "report.pdf", resp.Data[0].FileName)
	assert.Equal(t, "t1", resp.Data[0].TicketUUID)
	assert.Equal(t, "https://bucket.example/"+store.puts[0], resp.Data[0].URL)
}

func TestAttachmentCreateUnknownTicket(t *testing.T) {
	h := &AttachmentHandler{
		Attachments: &fakeAttachments{},
		Tickets:     &fakeTickets{},
		Store:       &fakeObjectStore{},
	}

	body, contentType := multipartUpload(t, "file", "report.pdf", "pdf-bytes")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/attachments?ticket_uuid=missing", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Create(c)
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Ticket not found", apiErr.Message)
}

func TestAttachmentDeleteRemovesObjectExactlyOnce(t *testing.T) {
	store := &fakeObjectStore{}
	attachments := &fakeAttachments{rows: map[string]model.Attachment{
		"a1": {UUID: "a1", TicketUUID: "t1", FileName: "report.pdf", URL: "https://bucket.example/a1"},
	}}
	h := &AttachmentHandler{Attachments: attachments, Tickets: &fakeTickets{}, Store: store}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/attachments/a1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues("a1")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a1"}, store.deletes)
	assert.Equal(t, []string{"a1"}, attachments.deleted)

	// the response still carries the removed row
	var resp struct {
		Data []model.Attachment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "report.pdf", resp.Data[0].FileName)
}

func TestAttachmentDeleteUnknown(t *testing.T) {
	store := &fakeObjectStore{}
	h := &AttachmentHandler{Attachments: &fakeAttachments{}, Tickets: &fakeTickets{}, Store: store}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/attachments/missing", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("uuid")
	c.SetParamValues("missing")

	err := h.Delete(c)
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Empty(t, store.deletes)
}
