package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/crucial707/landscape-lab/internal/storage"
)

var plantCols = []string{
	"id", "name", "scientific_name", "category", "description",
	"height_min", "height_max", "spread_min", "spread_max", "growth_rate",
	"sunlight_requirements", "water_requirements", "soil_type", "bloom_time",
	"flower_color", "hardiness_zone", "image_url", "project_id", "created_at", "updated_at", "owner_id",
}

func plantRow(id, ownerID int, imageURL string) *sqlmock.Rows {
	return sqlmock.NewRows(plantCols).AddRow(
		id, "Lavender", "Lavandula", "shrub", "",
		0.3, 0.6, 0.3, 0.9, "medium",
		"full sun", "low", "sandy", "summer",
		"purple", "5-9", imageURL, 1, testTime, testTime, ownerID,
	)
}

func newPlantHandler(t *testing.T) (*PlantHandler, sqlmock.Sqlmock, *storage.LocalStore) {
	db, mock := newMockDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return &PlantHandler{Repo: repo.NewPlantRepo(db), Store: store, Auth: newTestAuthenticator(t, db)}, mock, store
}

const plantBody = `{"name":"Lavender","category":"shrub","height_min":0.3,"height_max":0.6,"project_id":1}`

func TestPlantHandler_CreatePlant(t *testing.T) {
	h, mock, _ := newPlantHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM projects WHERE id = \$1 FOR SHARE`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO plants`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT (.+) FROM plants pl JOIN projects pr ON pr.id = pl.project_id WHERE pl.id = \$1`).
		WithArgs(7).
		WillReturnRows(plantRow(7, 1, ""))
	mock.ExpectCommit()

	rr := httptest.NewRecorder()
	h.CreatePlant(rr, as(httptest.NewRequest("POST", "/plants", strings.NewReader(plantBody)), alice))

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreatePlant status: got %d, want 201; body %s", rr.Code, rr.Body)
	}
	if strings.Contains(rr.Body.String(), "owner_id") {
		t.Errorf("plant response should not carry owner_id: %s", rr.Body)
	}
}

func TestPlantHandler_CreatePlant_Denied(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    int
		message string
	}{
		{"missing project", func(mock sqlmock.Sqlmock) {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT owner_id FROM projects WHERE id = \$1 FOR SHARE`).
				WithArgs(1).
				WillReturnError(sql.ErrNoRows)
			mock.ExpectRollback()
		}, http.StatusNotFound, "project not found"},
		{"someone else's project", func(mock sqlmock.Sqlmock) {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT owner_id FROM projects WHERE id = \$1 FOR SHARE`).
				WithArgs(1).
				WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(2))
			mock.ExpectRollback()
		}, http.StatusForbidden, "forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := newPlantHandler(t)
			tt.setup(mock)
			rr := httptest.NewRecorder()
			h.CreatePlant(rr, as(httptest.NewRequest("POST", "/plants", strings.NewReader(plantBody)), alice))

			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.want)
			}
			if !strings.Contains(rr.Body.String(), tt.message) {
				t.Errorf("body: got %s, want %q", rr.Body, tt.message)
			}
		})
	}
}

func TestPlantHandler_CreatePlant_HeightRange(t *testing.T) {
	h, _, _ := newPlantHandler(t)
	body := `{"name":"Lavender","height_min":2,"height_max":1,"project_id":1}`
	rr := httptest.NewRecorder()
	h.CreatePlant(rr, as(httptest.NewRequest("POST", "/plants", strings.NewReader(body)), alice))

	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "height_max") {
		t.Errorf("CreatePlant: got %d %s", rr.Code, rr.Body)
	}
}

func TestPlantHandler_UpdatePlant_MergedRangeChecked(t *testing.T) {
	h, mock, _ := newPlantHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) WHERE pl.id = \$1 FOR UPDATE OF pl`).
		WithArgs(7).
		WillReturnRows(plantRow(7, 1, ""))
	mock.ExpectRollback()

	req := requestWithChiURLParams("PUT", "/plants/7", []byte(`{"height_min":5}`), map[string]string{"id": "7"})
	rr := httptest.NewRecorder()
	h.UpdatePlant(rr, as(req, alice))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("UpdatePlant status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.Fields["height_max"] == "" {
		t.Errorf("fields: got %v", out.Fields)
	}
}

func TestPlantHandler_DeletePlant(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		want  int
	}{
		{"project owner", alice, http.StatusForbidden},
		{"admin", admin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := newPlantHandler(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT (.+) WHERE pl.id = \$1 FOR UPDATE OF pl`).
				WithArgs(7).
				WillReturnRows(plantRow(7, 1, ""))
			if tt.want == http.StatusNoContent {
				mock.ExpectExec(`DELETE FROM plants WHERE id = \$1`).
					WithArgs(7).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			req := requestWithChiURLParams("DELETE", "/plants/7", nil, map[string]string{"id": "7"})
			rr := httptest.NewRecorder()
			h.DeletePlant(rr, as(req, tt.actor))

			if rr.Code != tt.want {
				t.Errorf("DeletePlant status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestPlantHandler_UploadImage_ReplacesPrevious(t *testing.T) {
	h, mock, store := newPlantHandler(t)
	const oldKey = "plants/2026/01/01/old.png"
	putObject(t, store, oldKey, "old")
	body, contentType := multipartBody(t, "leaf.PNG", []byte("\x89PNG"))

	mock.ExpectQuery(`SELECT (.+) WHERE pl.id = \$1`).
		WithArgs(7).
		WillReturnRows(plantRow(7, 1, mediaURL(oldKey)))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) WHERE pl.id = \$1 FOR UPDATE OF pl`).
		WithArgs(7).
		WillReturnRows(plantRow(7, 1, mediaURL(oldKey)))
	mock.ExpectExec(`UPDATE plants`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) WHERE pl.id = \$1`).
		WithArgs(7).
		WillReturnRows(plantRow(7, 1, "/media/plants/2026/03/01/new.png"))
	mock.ExpectCommit()

	req := requestWithChiURLParams("POST", "/plants/7/image", body.Bytes(), map[string]string{"id": "7"})
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.UploadImage(rr, as(req, alice))

	if rr.Code != http.StatusOK {
		t.Fatalf("UploadImage status: got %d, want 200; body %s", rr.Code, rr.Body)
	}
	if _, err := store.Open(context.Background(), oldKey); err == nil {
		t.Error("previous image should have been removed")
	}
	if n := countFiles(t, store.Root); n != 1 {
		t.Errorf("stored objects: got %d, want 1", n)
	}
}

func TestPlantHandler_UploadImage_RejectsDocuments(t *testing.T) {
	h, mock, _ := newPlantHandler(t)
	body, contentType := multipartBody(t, "notes.pdf", []byte("%PDF"))
	mock.ExpectQuery(`SELECT (.+) WHERE pl.id = \$1`).
		WithArgs(7).
		WillReturnRows(plantRow(7, 1, ""))

	req := requestWithChiURLParams("POST", "/plants/7/image", body.Bytes(), map[string]string{"id": "7"})
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.UploadImage(rr, as(req, alice))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("UploadImage status: got %d, want 400", rr.Code)
	}
}

func TestPlantHandler_ListPlants_BadProjectID(t *testing.T) {
	h, _, _ := newPlantHandler(t)
	rr := httptest.NewRecorder()
	h.ListPlants(rr, as(httptest.NewRequest("GET", "/plants?project_id=x", nil), alice))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("ListPlants status: got %d, want 400", rr.Code)
	}
}

func TestMediaHandler_Serve(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	putObject(t, store, "plants/2026/03/01/a.png", "png-bytes")
	putObject(t, store, "materials/2026/03/01/b.png", "png-bytes")
	putObject(t, store, "projects/2026/03/01/plan.png", "png-bytes")
	h := &MediaHandler{Store: store}

	tests := []struct {
		key  string
		want int
	}{
		{"plants/2026/03/01/a.png", http.StatusOK},
		{"materials/2026/03/01/b.png", http.StatusOK},
		{"plants/2026/03/01/missing.png", http.StatusNotFound},
		{"../secret", http.StatusNotFound},
		// project attachments exist in the store but are private
		{"projects/2026/03/01/plan.png", http.StatusNotFound},
		{"plantsX/2026/03/01/a.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			req := requestWithChiURLParams("GET", "/media/"+tt.key, nil, map[string]string{"*": tt.key})
			rr := httptest.NewRecorder()
			h.Serve(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("Serve status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
					t.Errorf("Content-Type: got %q", ct)
				}
				if got, _ := io.ReadAll(rr.Body); string(got) != "png-bytes" {
					t.Errorf("body: got %q", got)
				}
			}
		})
	}
}
