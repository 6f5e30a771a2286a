package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"bilimBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleUser))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Auth
	mux.Post("/register", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/login", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/logout", authMiddleware.ThenFunc(app.userHandler.Logout))
	mux.Post("/forgetpassword", standardMiddleware.ThenFunc(app.userHandler.ForgotPassword))
	mux.Put("/resetpassword/:token", standardMiddleware.ThenFunc(app.userHandler.ResetPassword))

	// Profile
	mux.Get("/me", authMiddleware.ThenFunc(app.userHandler.GetMyProfile))
	mux.Del("/me", authMiddleware.ThenFunc(app.userHandler.DeleteMyProfile))
	mux.Put("/updateprofile", authMiddleware.ThenFunc(app.userHandler.UpdateProfile))
	mux.Put("/changepassword", authMiddleware.ThenFunc(app.userHandler.UpdatePassword))
	mux.Put("/updateprofilepicture", authMiddleware.ThenFunc(app.userHandler.UpdateAvatar))

	// Playlist
	mux.Post("/addtoplaylist/:course_id", authMiddleware.ThenFunc(app.userHandler.AddToPlaylist))
	mux.Del("/removefromplaylist/:course_id", authMiddleware.ThenFunc(app.userHandler.RemoveFromPlaylist))
	mux.Get("/playlist", authMiddleware.ThenFunc(app.userHandler.GetPlaylist))

	// Courses
	mux.Get("/courses", standardMiddleware.ThenFunc(app.courseHandler.GetCourses))
	mux.Post("/createcourse", adminAuthMiddleware.ThenFunc(app.courseHandler.CreateCourse))
	mux.Get("/course/:id", authMiddleware.ThenFunc(app.courseHandler.GetLectures))
	mux.Post("/course/:id", adminAuthMiddleware.ThenFunc(app.courseHandler.AddLecture))
	mux.Del("/course/:id", adminAuthMiddleware.ThenFunc(app.courseHandler.DeleteCourse))
	mux.Del("/lecture/:lecture_id", adminAuthMiddleware.ThenFunc(app.courseHandler.DeleteLecture))

	// Payments
	mux.Get("/razorpaykey", standardMiddleware.ThenFunc(app.paymentHandler.GetRazorpayKey))
	mux.Post("/buysubscription", authMiddleware.ThenFunc(app.paymentHandler.BuySubscription))
	mux.Post("/paymentverification", authMiddleware.ThenFunc(app.paymentHandler.PaymentVerification))
	mux.Del("/subscribe/cancel", authMiddleware.ThenFunc(app.paymentHandler.CancelSubscription))

	// Misc
	mux.Post("/contact", standardMiddleware.ThenFunc(app.otherHandler.Contact))
	mux.Post("/courserequest", standardMiddleware.ThenFunc(app.otherHandler.RequestCourse))
	mux.Post("/notifytoken", authMiddleware.ThenFunc(app.otherHandler.RegisterDeviceToken))

	// Admin
	mux.Get("/admin/users", adminAuthMiddleware.ThenFunc(app.userHandler.GetAllUsers))
	mux.Put("/admin/user/:id", adminAuthMiddleware.ThenFunc(app.userHandler.UpdateUserRole))
	mux.Del("/admin/user/:id", adminAuthMiddleware.ThenFunc(app.userHandler.DeleteUser))
	mux.Get("/admin/stats", adminAuthMiddleware.ThenFunc(app.adminHandler.GetDashboardStats))
	mux.Get("/admin/stats/live", adminAuthMiddleware.ThenFunc(app.StatsFeedHandler))

	return standardMiddleware.Then(mux)
}
