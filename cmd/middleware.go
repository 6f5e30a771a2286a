package main

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"bilimBack/internal/models"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.infoLog.Printf("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.errorLog.Output(2, fmt.Sprintf("%s\n%s", err.Error(), debug.Stack()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// JWTMiddleware authenticates the request. An expired access token is
// tolerated when a valid Refresh-Token header names a live session; the new
// access token then travels back in the Authorization response header.
func (app *application) JWTMiddleware(next http.Handler, requiredRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Authorization header missing or invalid", http.StatusUnauthorized)
			return
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(app.cfg.JWT.SigningKey), nil
		})

		if err != nil || !token.Valid {
			refreshToken := r.Header.Get("Refresh-Token")
			if refreshToken == "" {
				http.Error(w, "Refresh token missing", http.StatusUnauthorized)
				return
			}

			session, err := app.sessionRepo.GetSessionByToken(r.Context(), refreshToken)
			if err != nil {
				http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
				return
			}
			if session.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Expired refresh token", http.StatusUnauthorized)
				return
			}

			newAccessToken, err := app.generateAccessToken(session.UserID, session.Role)
			if err != nil {
				http.Error(w, "Error generating new access token", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Authorization", "Bearer "+newAccessToken)

			claims.UserID = uint(session.UserID)
			claims.Role = session.Role
		}

		switch requiredRole {
		case models.RoleAdmin:
			if claims.Role != models.RoleAdmin {
				http.Error(w, "Forbidden: only admins allowed", http.StatusForbidden)
				return
			}
		case models.RoleUser:
			if claims.Role != models.RoleUser && claims.Role != models.RoleAdmin {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}

		ctx := context.WithValue(r.Context(), "user_id", int(claims.UserID))
		ctx = context.WithValue(ctx, "role", claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) generateAccessToken(userID int, role string) (string, error) {
	claims := &models.Claims{
		UserID: uint(userID),
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(15 * time.Minute).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(app.cfg.JWT.SigningKey))
}
