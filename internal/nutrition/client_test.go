// internal/nutrition/client_test.go
package nutrition

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nutrition-log/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestNormalizeUsesServingWeightForEveryMacro(t *testing.T) {
	profile, err := Normalize(Food{
		FoodName:           "banana",
		ServingWeightGrams: ptr(118),
		Calories:           ptr(105.02),
		Protein:            ptr(1.298),
		TotalFat:           ptr(0.3894),
		TotalCarbohydrate:  ptr(26.9512),
	})
	require.NoError(t, err)
	require.Equal(t, "banana", profile.FoodName)
	require.InDelta(t, 89.0, profile.CaloriesPer100g, 1e-9)
	require.InDelta(t, 1.1, profile.ProteinPer100g, 1e-9)
	require.InDelta(t, 0.33, profile.FatPer100g, 1e-9)
	require.InDelta(t, 22.84, profile.CarbsPer100g, 1e-9)
}

func TestNormalizeDefaultsToHundredGrams(t *testing.T) {
	cases := []struct {
		name    string
		serving *float64
	}{
		{name: "missing", serving: nil},
		{name: "zero", serving: ptr(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile, err := Normalize(Food{ServingWeightGrams: tc.serving, Calories: ptr(130), Protein: ptr(2.7)})
			require.NoError(t, err)
			require.InDelta(t, 130.0, profile.CaloriesPer100g, 1e-9)
			require.InDelta(t, 2.7, profile.ProteinPer100g, 1e-9)
			require.Zero(t, profile.FatPer100g)
			require.Zero(t, profile.CarbsPer100g)
		})
	}
}

func TestNormalizeRejectsNegativeValues(t *testing.T) {
	_, err := Normalize(Food{Calories: ptr(-1)})
	require.ErrorIs(t, err, models.ErrProviderError)
}

func TestNormalizeRequiresCalories(t *testing.T) {
	_, err := Normalize(Food{FoodName: "mystery", ServingWeightGrams: ptr(100), Protein: ptr(3)})
	require.ErrorIs(t, err, models.ErrProviderError)
	require.Contains(t, err.Error(), "nf_calories")
}

func TestScale(t *testing.T) {
	got := Scale(models.NutrientProfile{CaloriesPer100g: 89, ProteinPer100g: 1.1}, 120)
	require.InDelta(t, 106.8, got.Calories, 1e-9)
	require.InDelta(t, 1.32, got.Protein, 1e-9)
}

func TestClientResolveSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/natural/nutrients", r.URL.Path)
		require.Equal(t, "app-id", r.Header.Get("x-app-id"))
		require.Equal(t, "app-key", r.Header.Get("x-app-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "rice", body["query"])

		_, _ = w.Write([]byte(`{"foods":[{"food_name":"rice","serving_weight_grams":158,"nf_calories":205.4,"nf_protein":4.25,"nf_total_fat":0.44,"nf_total_carbohydrate":44.51}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, AppID: "app-id", AppKey: "app-key"})
	profile, err := client.Resolve(context.Background(), "rice")
	require.NoError(t, err)
	require.InDelta(t, 130.0, profile.CaloriesPer100g, 1e-9)
	require.InDelta(t, 4.25/158*100, profile.ProteinPer100g, 1e-9)
}

func TestClientResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"foods":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Resolve(context.Background(), "unobtainium")
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NotErrorIs(t, err, models.ErrProviderError)
}

func TestClientResolveUnmatchedFoodIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"We couldn't match any of your foods","id":"abc"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Resolve(context.Background(), "unobtainium")
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NotErrorIs(t, err, models.ErrProviderError)
}

func TestClientResolveProviderErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
			},
		},
		{
			name: "food without calories",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"foods":[{"food_name":"mystery","serving_weight_grams":100}]}`))
			},
		},
		{
			name: "bare not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"foods": [`))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).Resolve(context.Background(), "banana")
			require.ErrorIs(t, err, models.ErrProviderError)
			require.NotErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestClientResolveTimeoutIsProviderError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Resolve(context.Background(), "banana")
	require.ErrorIs(t, err, models.ErrProviderError)
}

func TestClientResolveRejectsEmptyDescription(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Resolve(context.Background(), "   ")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Zero(t, atomic.LoadInt32(&calls))
}
