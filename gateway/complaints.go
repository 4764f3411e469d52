package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/trackvision/portal-web/cameras"
	"github.com/trackvision/portal-web/complaints"
	"github.com/trackvision/portal-web/internal/errors"
)

func (c *Client) ListComplaints(ctx context.Context, accessToken string, filter complaints.ListFilter) ([]complaints.Complaint, error) {
	var out struct {
		Complaints []complaints.Complaint `json:"complaints"`
	}
	req := request{method: http.MethodGet, path: "complaints/", query: filter.Values(), accessToken: accessToken}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.Complaints, nil
}

func (c *Client) SearchComplaints(ctx context.Context, accessToken string, q complaints.SearchQuery) ([]complaints.Complaint, error) {
	var out struct {
		Data []complaints.Complaint `json:"data"`
	}
	req := request{method: http.MethodGet, path: "complaints/search/", query: q.Values(), accessToken: accessToken}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetComplaint(ctx context.Context, accessToken string, id int64) (complaints.Complaint, error) {
	var out complaints.Complaint
	req := request{method: http.MethodGet, path: "complaints/" + strconv.FormatInt(id, 10) + "/", accessToken: accessToken}
	if err := c.do(ctx, req, &out); err != nil {
		return complaints.Complaint{}, err
	}
	return out, nil
}

// SubmitComplaint registers a complaint as multipart form data, with the picture attached when
// there is one.
func (c *Client) SubmitComplaint(ctx context.Context, accessToken string, s complaints.Submission) (complaints.SubmitResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range s.Fields() {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return complaints.SubmitResult{}, errors.Wrapf(err, "[gateway SubmitComplaint] failed to write %s", f[0])
		}
	}
	if s.Picture != nil && s.Picture.Content != nil {
		part, err := mw.CreateFormFile("vehiclePicture", filepath.Base(s.Picture.Filename))
		if err != nil {
			return complaints.SubmitResult{}, errors.Wrapf(err, "[gateway SubmitComplaint] failed to attach picture")
		}
		if _, err := io.Copy(part, s.Picture.Content); err != nil {
			return complaints.SubmitResult{}, errors.Wrapf(err, "[gateway SubmitComplaint] failed to copy picture")
		}
	}
	if err := mw.Close(); err != nil {
		return complaints.SubmitResult{}, fmt.Errorf("[gateway SubmitComplaint] failed to close form: %w", err)
	}

	req := request{
		method:      http.MethodPost,
		path:        "complaints/register/",
		accessToken: accessToken,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	var out complaints.SubmitResult
	if err := c.do(ctx, req, &out); err != nil {
		return complaints.SubmitResult{}, err
	}
	return out, nil
}

// ConfigureCamera forwards a validated camera form.
func (c *Client) ConfigureCamera(ctx context.Context, accessToken string, cfg cameras.Config) (Message, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Message{}, err
	}
	req, err := jsonRequest(http.MethodPost, "cameras/configure/", cfg)
	if err != nil {
		return Message{}, err
	}
	req.accessToken = accessToken

	var out Message
	if err := c.do(ctx, req, &out); err != nil {
		return Message{}, err
	}
	return out, nil
}
