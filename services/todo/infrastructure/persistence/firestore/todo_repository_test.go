package firestore

import (
	"errors"
	"math"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

func TestDecode(t *testing.T) {
	at := time.Date(2030, 1, 2, 9, 30, 15, 500, time.UTC)

	tests := []struct {
		name    string
		data    map[string]any
		want    *models.Todo
		wantErr bool
	}{
		{
			name: "all fields",
			data: map[string]any{
				"title": "Dentist", "date": at, "imageURL": "images/a.jpg",
				"latitude": 35.1796, "longitude": 129.0756,
			},
			want: &models.Todo{
				ID: "doc1", UserID: "u1", Title: "Dentist",
				ScheduledAt: at.Truncate(time.Second), ImageURL: "images/a.jpg",
				Location: models.Location{Latitude: 35.1796, Longitude: 129.0756},
			},
		},
		{
			name: "integer coordinates",
			data: map[string]any{"title": "Run", "date": at, "latitude": int64(10), "longitude": int64(-20)},
			want: &models.Todo{
				ID: "doc1", UserID: "u1", Title: "Run",
				ScheduledAt: at.Truncate(time.Second),
				Location:    models.Location{Latitude: 10, Longitude: -20},
			},
		},
		{
			name: "no coordinate uses default",
			data: map[string]any{"title": "Read", "date": at, "imageURL": nil},
			want: &models.Todo{
				ID: "doc1", UserID: "u1", Title: "Read",
				ScheduledAt: at.Truncate(time.Second), Location: models.DefaultLocation,
			},
		},
		{name: "missing title", data: map[string]any{"date": at}, wantErr: true},
		{name: "empty title", data: map[string]any{"title": "", "date": at}, wantErr: true},
		{name: "date as string", data: map[string]any{"title": "x", "date": "2030-01-02"}, wantErr: true},
		{name: "image not a string", data: map[string]any{"title": "x", "date": at, "imageURL": 3}, wantErr: true},
		{name: "latitude only", data: map[string]any{"title": "x", "date": at, "latitude": 1.0}, wantErr: true},
		{name: "latitude as string", data: map[string]any{"title": "x", "date": at, "latitude": "1", "longitude": 2.0}, wantErr: true},
		{name: "NaN latitude", data: map[string]any{"title": "x", "date": at, "latitude": math.NaN(), "longitude": 0.0}, wantErr: true},
		{name: "infinite longitude", data: map[string]any{"title": "x", "date": at, "latitude": 0.0, "longitude": math.Inf(1)}, wantErr: true},
		{name: "out of range", data: map[string]any{"title": "x", "date": at, "latitude": 91.0, "longitude": 0.0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode("doc1", "u1", tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedDocument) {
					t.Fatalf("expected ErrMalformedDocument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) || got.UserID != tt.want.UserID {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestEncodeUsesWireNames(t *testing.T) {
	at := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		imageURL   string
		wantFields []string
	}{
		{"with image", "images/u1/a.jpg", []string{"title", "date", "imageURL", "latitude", "longitude"}},
		{"without image", "", []string{"title", "date", "latitude", "longitude"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(models.NewTodo("u1", "Pay rent", at, tt.imageURL, models.DefaultLocation))
			for _, field := range tt.wantFields {
				if _, ok := data[field]; !ok {
					t.Errorf("expected field %q in encoded document", field)
				}
			}
			if len(data) != len(tt.wantFields) {
				t.Errorf("expected %d fields, got %v", len(tt.wantFields), data)
			}

			back, err := decode("doc1", "u1", data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if back.ImageURL != tt.imageURL {
				t.Errorf("imageURL round trip: got %q, want %q", back.ImageURL, tt.imageURL)
			}
		})
	}
}

func TestUpdatesDeleteAbsentImage(t *testing.T) {
	at := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)
	ups := updates(encode(models.NewTodo("u1", "Pay rent", at, "", models.DefaultLocation)))

	if len(ups) != 5 {
		t.Fatalf("expected every field updated, got %d", len(ups))
	}
	for _, u := range ups {
		if u.Path == "imageURL" && u.Value != firestore.Delete {
			t.Fatalf("expected imageURL deleted, got %v", u.Value)
		}
	}
}
