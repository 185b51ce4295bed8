package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dietgen/dietplan/internal/logger"
	"github.com/dietgen/dietplan/internal/repository/postgres"
	"github.com/dietgen/dietplan/internal/service/auth"
	"github.com/dietgen/dietplan/internal/service/auth/tokenmanager"
	"github.com/dietgen/dietplan/internal/service/diet"
	"github.com/dietgen/dietplan/internal/testutil"
)

const dietJSON = `{
	"age": 35,
	"gender": "female",
	"height": "168.5",
	"weights": ["72.4", "71.9"],
	"targetWeight": "65",
	"diabetes": "none",
	"routine": [
		{"day": 1, "meals": [
			{"name": "porridge", "time": "08:00", "calories": "320"},
			{"name": "salmon", "time": "19:30", "calories": "540.5"}
		]}
	]
}`

func Test_DietHandlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server and register two users: owner and stranger
	withTx := func(t *testing.T, fn func(url string, owner *http.Cookie, stranger *http.Cookie)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			tokenManager, err := tokenmanager.New(tokenmanager.Config{
				AccessSecret:  "test-access-secret",
				RefreshSecret: "test-refresh-secret",
			})
			require.NoError(t, err)
			s, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}}, tokenManager, storage)
			require.NoError(t, err)

			owner, err := s.Register(t.Context(), "owner@x.com", "owner", "StrongEnoughPassword")
			require.NoError(t, err)
			stranger, err := s.Register(t.Context(), "stranger@x.com", "stranger", "StrongEnoughPassword")
			require.NoError(t, err)

			srv := httptest.NewServer(NewRouter(s, diet.NewService(storage), RouterOptions{}, logger.NewNoOpLogger()))
			defer srv.Close()

			fn(srv.URL,
				&http.Cookie{Name: "accessToken", Value: owner.Pair.Access.Value},
				&http.Cookie{Name: "accessToken", Value: stranger.Pair.Access.Value},
			)
		})
	}

	type dietRes struct {
		ID       string `json:"id"`
		Diabetes string `json:"diabetes"`
		Weights  []string
		Routine  []struct {
			Meals []struct {
				Name      string `json:"name"`
				Completed bool   `json:"completed"`
			} `json:"meals"`
		} `json:"routine"`
	}

	create := func(t *testing.T, url string, owner *http.Cookie) dietRes {
		resp, body := do(t, http.MethodPost, url+"/api/diet", dietJSON, owner)
		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

		var res dietRes
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		return res
	}

	t.Run("create ok", func(t *testing.T) {
		withTx(t, func(url string, owner *http.Cookie, _ *http.Cookie) {
			res := create(t, url, owner)

			require.NotEmpty(t, res.ID)
			require.Equal(t, []string{"72.4", "71.9"}, res.Weights, "decimals rendered as strings")
			require.Len(t, res.Routine, 1)
			require.Len(t, res.Routine[0].Meals, 2)
		})
	})

	t.Run("create requires auth", func(t *testing.T) {
		withTx(t, func(url string, _ *http.Cookie, _ *http.Cookie) {
			resp, _ := do(t, http.MethodPost, url+"/api/diet", dietJSON)

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("create invalid", func(t *testing.T) {
		withTx(t, func(url string, owner *http.Cookie, _ *http.Cookie) {
			data := `{
				"age": 35, "gender": "female", "height": "0", "weights": ["72"],
				"targetWeight": "65", "diabetes": "maybe",
				"routine": [{"day": 1, "meals": [{"name": "tea", "time": "25:00", "calories": "5"}]}]
			}`

			resp, body := do(t, http.MethodPost, url+"/api/diet", data, owner)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			var res struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &res))
			require.Equal(t, "validation_failed", res.Error)
			require.Contains(t, res.Fields, "height")
			require.Contains(t, res.Fields, "diabetes")
			require.Contains(t, res.Fields, "time")
		})
	})

	t.Run("list and get own", func(t *testing.T) {
		withTx(t, func(url string, owner *http.Cookie, stranger *http.Cookie) {
			created := create(t, url, owner)

			resp, body := do(t, http.MethodGet, url+"/api/diet", "", owner)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			var list []dietRes
			require.NoError(t, json.Unmarshal([]byte(body), &list))
			require.Len(t, list, 1)

			resp, body = do(t, http.MethodGet, url+"/api/diet", "", stranger)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `[]`, body, "stranger has no diets")

			resp, _ = do(t, http.MethodGet, url+"/api/diet/"+created.ID, "", owner)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, body = do(t, http.MethodGet, url+"/api/diet/"+created.ID, "", stranger)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Diet not found"}`, body)

			resp, _ = do(t, http.MethodGet, url+"/api/diet/not-uuid", "", owner)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	})

	t.Run("update", func(t *testing.T) {
		withTx(t, func(url string, owner *http.Cookie, stranger *http.Cookie) {
			created := create(t, url, owner)

			resp, _ := do(t, http.MethodPut, url+"/api/diet/"+created.ID, dietJSON, stranger)
			require.Equal(t, http.StatusNotFound, resp.StatusCode, "stranger can't update")

			resp, body := do(t, http.MethodPut, url+"/api/diet/"+created.ID, dietJSON, owner)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("meal status", func(t *testing.T) {
		withTx(t, func(url string, owner *http.Cookie, _ *http.Cookie) {
			created := create(t, url, owner)

			resp, body := do(t, http.MethodPatch, url+"/api/diet/"+created.ID+"/routine/0/meals/1", `{"completed": true}`, owner)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			var res dietRes
			require.NoError(t, json.Unmarshal([]byte(body), &res))
			require.False(t, res.Routine[0].Meals[0].Completed)
			require.True(t, res.Routine[0].Meals[1].Completed)

			resp, body = do(t, http.MethodPatch, url+"/api/diet/"+created.ID+"/routine/3/meals/0", `{"completed": true}`, owner)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Meal not found"}`, body)

			resp, _ = do(t, http.MethodPatch, url+"/api/diet/"+created.ID+"/routine/x/meals/0", `{"completed": true}`, owner)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			resp, _ = do(t, http.MethodPatch, url+"/api/diet/"+created.ID+"/routine/0/meals/0", `{}`, owner)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, "completed is required")
		})
	})
}
