package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Clark-Hu/parks-catalog/internal/domain"
)

func BenchmarkHandleListParks(b *testing.B) {
	srv, svc := newMockServer(b)

	parks := make([]domain.ParkStats, 0, 100)
	for i := 1; i <= 100; i++ {
		parks = append(parks, domain.ParkStats{
			Park:         domain.Park{ID: int64(i), Name: "Park", CreatedAt: time.Now()},
			AvgRating:    3.5,
			ReviewsCount: 10,
		})
	}
	svc.On("ListParks", mock.Anything, mock.Anything).Return(parks, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/parks", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
