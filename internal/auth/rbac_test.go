package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/factoryshift/internal/auth"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

var _ = Describe("AuthMiddleware and RoleGuard", func() {
	var (
		repo    *mockAuthRepository
		service *auth.Service
		handler *auth.Handler
		guard   *auth.RoleGuard

		admin      *auth.User
		divManager *auth.User
		employee   *auth.User

		okHandler http.Handler
	)

	tokenFor := func(u *auth.User) string {
		tokens, err := service.Authenticate(auth.LoginDTO{Username: u.Username, Password: "shipitfast"})
		Expect(err).NotTo(HaveOccurred())
		return tokens.AccessToken
	}

	BeforeEach(func() {
		repo = newMockAuthRepository()
		gen := auth.NewJWTTokenGenerator("test-secret-key-that-is-long-enough", time.Hour, 24*time.Hour)
		service = auth.NewService(repo, gen, bcrypt.MinCost)
		handler = auth.NewHandler(service)
		guard = auth.NewRoleGuard(slog.Default())

		hash, err := bcrypt.GenerateFromPassword([]byte("shipitfast"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		admin = &auth.User{ID: 1, Username: "admin", Email: "admin@factory.com", PasswordHash: string(hash), Role: authz.RoleAdmin, IsActive: true}
		divManager = &auth.User{ID: 2, Username: "prod_manager", Email: "prod@factory.com", PasswordHash: string(hash), Role: authz.RoleDivisionManager, IsActive: true}
		employee = &auth.User{ID: 4, Username: "eli", Email: "eli@factory.com", PasswordHash: string(hash), Role: authz.RoleEmployee, IsActive: true}
		repo.add(admin)
		repo.add(divManager)
		repo.add(employee)

		okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	Describe("AuthMiddleware", func() {
		It("rejects requests without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(okHandler).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects garbage tokens", func() {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("Authorization", "Bearer not-a-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(okHandler).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("passes a valid bearer token through with the user in context", func() {
			var seen *auth.User
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = auth.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(employee))
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(inner).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(seen).NotTo(BeNil())
			Expect(seen.ID).To(Equal(employee.ID))
		})
	})

	Describe("RoleGuard", func() {
		serve := func(gate func(http.Handler) http.Handler, u *auth.User) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(u))
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(gate(okHandler)).ServeHTTP(rec, req)
			return rec
		}

		It("admits admins through the admin gate", func() {
			Expect(serve(guard.RequireAdmin(), admin).Code).To(Equal(http.StatusOK))
		})

		It("rejects employees at the admin gate", func() {
			rec := serve(guard.RequireAdmin(), employee)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("Not enough permissions"))
		})

		It("rejects employees at the manager gate", func() {
			Expect(serve(guard.RequireManager(), employee).Code).To(Equal(http.StatusForbidden))
		})

		It("admits division managers through the manager gate", func() {
			Expect(serve(guard.RequireManager(), divManager).Code).To(Equal(http.StatusOK))
		})

		It("admits admins through the manager gate", func() {
			Expect(serve(guard.RequireManager(), admin).Code).To(Equal(http.StatusOK))
		})
	})
})
