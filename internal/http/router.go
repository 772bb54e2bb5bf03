package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Signup              http.HandlerFunc
	Login               http.HandlerFunc
	Me                  http.HandlerFunc
	Stations            http.HandlerFunc
	StationAvailability http.HandlerFunc
	CreateStation       http.HandlerFunc
	UpdateStation       http.HandlerFunc
	DeleteStation       http.HandlerFunc
	StationBookings     http.HandlerFunc
	CreateBooking       http.HandlerFunc
	ConfirmBooking      http.HandlerFunc
	CancelBooking       http.HandlerFunc
	MyBookings          http.HandlerFunc
	StationsFeed        http.HandlerFunc
	Health              http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Signup != nil {
		mux.Handle("/auth/signup", method(http.MethodPost, routes.Signup))
	}
	if routes.Login != nil {
		mux.Handle("/auth/login", method(http.MethodPost, routes.Login))
	}
	if routes.Me != nil {
		mux.Handle("/auth/me", method(http.MethodGet, routes.Me))
	}
	if routes.Stations != nil {
		mux.Handle("/stations", method(http.MethodGet, routes.Stations))
	}
	if routes.StationAvailability != nil {
		mux.Handle("/stations/{id}/availability", method(http.MethodGet, routes.StationAvailability))
	}
	if routes.CreateStation != nil {
		mux.Handle("/admin/stations", method(http.MethodPost, routes.CreateStation))
	}
	// Same path, two verbs: the method has to live in the pattern here.
	if routes.UpdateStation != nil {
		mux.Handle("PUT /admin/stations/{id}", routes.UpdateStation)
	}
	if routes.DeleteStation != nil {
		mux.Handle("DELETE /admin/stations/{id}", routes.DeleteStation)
	}
	if routes.StationBookings != nil {
		mux.Handle("/admin/stations/{id}/bookings", method(http.MethodGet, routes.StationBookings))
	}
	if routes.CreateBooking != nil {
		mux.Handle("/bookings", method(http.MethodPost, routes.CreateBooking))
	}
	if routes.ConfirmBooking != nil {
		mux.Handle("/bookings/{id}/confirm", method(http.MethodPost, routes.ConfirmBooking))
	}
	if routes.CancelBooking != nil {
		mux.Handle("/bookings/{id}/cancel", method(http.MethodPost, routes.CancelBooking))
	}
	if routes.MyBookings != nil {
		mux.Handle("/bookings/me", method(http.MethodGet, routes.MyBookings))
	}
	if routes.StationsFeed != nil {
		mux.Handle("/ws/stations", method(http.MethodGet, routes.StationsFeed))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
