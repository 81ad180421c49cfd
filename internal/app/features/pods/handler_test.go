package pods_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/features/pods"
	podstore "github.com/galgranov/gke-analyzer/internal/app/store/pods"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
	"github.com/galgranov/gke-analyzer/internal/testutil"
)

func newTestPodsHandler(t *testing.T) (*pods.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return pods.NewHandler(podstore.New(db), 5, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestTestEndpoint(t *testing.T) {
	h, _ := newTestPodsHandler(t)

	req := httptest.NewRequest("GET", "/pods/test", nil)
	rec := httptest.NewRecorder()
	h.Test(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["message"] == "" {
		t.Error("no message in response")
	}
}

func TestPublicEndpoint_CapsList(t *testing.T) {
	h, fx := newTestPodsHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 8; i++ {
		fx.CreatePod(ctx, "pod-"+string(rune('a'+i)), "default", "Running")
	}

	req := httptest.NewRequest("GET", "/pods/public", nil)
	rec := httptest.NewRecorder()
	h.Public(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []models.Pod
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("public list returned %d pods, want 5", len(got))
	}
}

func TestCreatePod(t *testing.T) {
	h, _ := newTestPodsHandler(t)

	body := `{"name":"web-1","namespace":"default","status":"Running","labels":{"app":"web"}}`
	req := httptest.NewRequest("POST", "/pods", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var pod models.Pod
	if err := json.Unmarshal(rec.Body.Bytes(), &pod); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if pod.ID.IsZero() {
		t.Error("no id assigned")
	}
	if pod.Labels["app"] != "web" {
		t.Errorf("labels = %v, want app=web", pod.Labels)
	}
}

func TestCreatePod_Validation(t *testing.T) {
	h, _ := newTestPodsHandler(t)

	for _, body := range []string{`{}`, `{"name":"web-1"}`, `{"namespace":"default"}`, `{"name":"  ","namespace":"default"}`} {
		req := httptest.NewRequest("POST", "/pods", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestListPods_Filters(t *testing.T) {
	h, fx := newTestPodsHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreatePodOn(ctx, "web-1", "default", "Running", "prod-east", "node-a")
	fx.CreatePodOn(ctx, "web-2", "default", "Pending", "prod-west", "node-b")
	fx.CreatePod(ctx, "job-1", "batch", "Failed")

	cases := []struct {
		url  string
		want int
	}{
		{"/pods", 3},
		{"/pods?namespace=default", 2},
		{"/pods?cluster=prod-east", 1},
		{"/pods?node=node-b", 1},
		{"/pods?status=Failed", 1},
		{"/pods?namespace=missing", 0},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.url, nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", tc.url, rec.Code)
		}
		var got []models.Pod
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: bad body: %v", tc.url, err)
		}
		if len(got) != tc.want {
			t.Errorf("%s: %d pods, want %d", tc.url, len(got), tc.want)
		}
	}
}

func TestGetPod_NotFoundAndMalformed(t *testing.T) {
	h, _ := newTestPodsHandler(t)

	for _, id := range []string{"not-hex", "aaaaaaaaaaaaaaaaaaaaaaaa"} {
		req := httptest.NewRequest("GET", "/pods/"+id, nil)
		req = testutil.WithChiURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("id %q: status = %d, want 404", id, rec.Code)
		}
	}
}

func TestUpdatePod(t *testing.T) {
	h, fx := newTestPodsHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	created := fx.CreatePod(ctx, "web-1", "default", "Pending")

	body := `{"status":"Running","restartCount":3}`
	req := httptest.NewRequest("PATCH", "/pods/"+created.ID.Hex(), strings.NewReader(body))
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var pod models.Pod
	if err := json.Unmarshal(rec.Body.Bytes(), &pod); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if pod.Status != "Running" || pod.RestartCount != 3 {
		t.Errorf("updated = (%q, %d), want (Running, 3)", pod.Status, pod.RestartCount)
	}
	if pod.Name != "web-1" {
		t.Error("partial update touched the name")
	}
	if !pod.UpdatedAt.After(pod.CreatedAt) {
		t.Error("updatedAt not after createdAt following a patch")
	}
}

func TestDeletePod_ReturnsRemoved(t *testing.T) {
	h, fx := newTestPodsHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	created := fx.CreatePod(ctx, "web-1", "default", "Running")

	req := httptest.NewRequest("DELETE", "/pods/"+created.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var pod models.Pod
	if err := json.Unmarshal(rec.Body.Bytes(), &pod); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if pod.ID != created.ID {
		t.Error("delete did not return the removed pod")
	}

	// Deleting again is a 404.
	req = httptest.NewRequest("DELETE", "/pods/"+created.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}
