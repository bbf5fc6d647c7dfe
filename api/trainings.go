package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"capacitaciones/coalesce"
)

const (
	pathTrainings       = "capacitaciones/capacitaciones/"
	pathCreateTraining  = "capacitaciones/crear-capacitacion/"
	pathUpload          = "capacitaciones/subir-archivoImagen/"
	pathCollaboratorCSV = "capacitaciones/cargar/"
	pathLogin           = "auth/login/"
)

func trainingPath(id int) string {
	return fmt.Sprintf("%s%d/", pathCreateTraining, id)
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	key := coalesce.Key("auth:login", []string{email, password})
	res, err := coalesced(ctx, c, key, func(ctx context.Context) (*LoginResponse, error) {
		var out LoginResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(map[string]string{"email": email, "password": password}).
			SetResult(&out).
			Post(pathLogin)
		if err := c.check("login", resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return Session{}, err
	}
	sess := Session{Access: res.Access, Refresh: res.Refresh, Role: res.IsAdmin}
	if err := c.store.Save(sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// ListTrainings returns every training visible to the session.
func (c *Client) ListTrainings(ctx context.Context) ([]TrainingSummary, error) {
	return coalesced(ctx, c, coalesce.Key("cap:getCapList", nil), func(ctx context.Context) ([]TrainingSummary, error) {
		var out []TrainingSummary
		resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(pathTrainings)
		if err := c.check("list trainings", resp, err); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// FetchTraining loads the full editable document of a training.
func (c *Client) FetchTraining(ctx context.Context, id int) (*TrainingDetail, error) {
	return coalesced(ctx, c, coalesce.Key("cap:getCapacitacionDetalle", id), func(ctx context.Context) (*TrainingDetail, error) {
		var out TrainingDetail
		resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(trainingPath(id))
		if err := c.check("fetch training", resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// CreateTraining posts a complete training with its collaborator ids.
func (c *Client) CreateTraining(ctx context.Context, payload *TrainingPayload) (*CreatedTraining, error) {
	return coalesced(ctx, c, coalesce.Key("cap:crearCapacitacionCompleta", payload), func(ctx context.Context) (*CreatedTraining, error) {
		var out CreatedTraining
		resp, err := c.http.R().SetContext(ctx).SetBody(payload).SetResult(&out).Post(pathCreateTraining)
		if err := c.check("create training", resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// PatchTraining updates every field except collaborators, which are
// synchronised separately.
func (c *Client) PatchTraining(ctx context.Context, id int, payload *TrainingPayload) error {
	body := *payload
	body.Collaborators = nil
	key := coalesce.Key("cap:patchCapacitacion", struct {
		ID      int
		Payload TrainingPayload
	}{id, body})
	_, err := coalesced(ctx, c, key, func(ctx context.Context) (struct{}, error) {
		resp, err := c.http.R().SetContext(ctx).SetBody(&body).Patch(trainingPath(id))
		return struct{}{}, c.check("patch training", resp, err)
	})
	return err
}

// SyncCollaborators adds and removes collaborators of an existing training.
func (c *Client) SyncCollaborators(ctx context.Context, id int, add, remove []int) (*SyncResult, error) {
	req := SyncRequest{Add: nonNil(add), Remove: nonNil(remove)}
	key := coalesce.Key("cap:updateColaboradores", struct {
		ID  int
		Req SyncRequest
	}{id, req})
	return coalesced(ctx, c, key, func(ctx context.Context) (*SyncResult, error) {
		var out SyncResult
		resp, err := c.http.R().SetContext(ctx).SetBody(&req).SetResult(&out).Post(trainingPath(id))
		if err := c.check("sync collaborators", resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// DeleteTraining removes a training.
func (c *Client) DeleteTraining(ctx context.Context, id int) error {
	_, err := coalesced(ctx, c, coalesce.Key("cap:eliminarCapacitacion", id), func(ctx context.Context) (struct{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(map[string]int{"capacitacion_id": id}).
			Put(pathTrainings)
		return struct{}{}, c.check("delete training", resp, err)
	})
	return err
}

// UploadAttachment stores a file and returns its remote URL. The whitelist
// for the purpose is checked before anything is sent.
func (c *Client) UploadAttachment(ctx context.Context, purpose Purpose, file Attachment) (string, error) {
	if len(file.Data) == 0 {
		return "", errors.New("debe enviar un archivo")
	}
	if err := CheckAttachment(purpose, file.Name, file.MIME); err != nil {
		return "", err
	}
	tipo, subtipo := purpose.FormFields()

	key := coalesce.ContentKey("cap:uploadArchivo", file.Data, tipo, subtipo, file.Name)
	return coalesced(ctx, c, key, func(ctx context.Context) (string, error) {
		form := map[string]string{"tipo": tipo}
		if subtipo != "" {
			form["subtipo"] = subtipo
		}
		var out UploadResult
		resp, err := c.http.R().
			SetContext(ctx).
			SetMultipartField("archivo", file.Name, file.MIME, bytes.NewReader(file.Data)).
			SetMultipartFormData(form).
			SetResult(&out).
			Post(pathUpload)
		if err := c.check("upload "+string(purpose), resp, err); err != nil {
			return "", err
		}
		u := out.ResolvedURL()
		if u == "" {
			return "", fmt.Errorf("upload %s: backend returned no URL for %s", purpose, file.Name)
		}
		return u, nil
	})
}

// UploadCollaboratorCSV sends a CSV of national ids and returns which
// collaborators were found.
func (c *Client) UploadCollaboratorCSV(ctx context.Context, name string, data []byte) (*CollaboratorCSVResult, error) {
	key := coalesce.ContentKey("cap:cargarColaboradores", data, name)
	return coalesced(ctx, c, key, func(ctx context.Context) (*CollaboratorCSVResult, error) {
		var out CollaboratorCSVResult
		resp, err := c.http.R().
			SetContext(ctx).
			SetMultipartField("archivo", name, "text/csv", bytes.NewReader(data)).
			SetResult(&out).
			Post(pathCollaboratorCSV)
		if err := c.check("upload collaborators", resp, err); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
