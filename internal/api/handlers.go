package api

import (
	"net/http"
	"strconv"
	"time"

	"pawsit/internal/metrics"
	"pawsit/internal/models"
)

// --- Bookings ---

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var booking models.Booking
	if err := decodeBody(r, &booking); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.CreateBooking(r.Context(), &booking); err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncBookingCreated()
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.AcceptBooking(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncBookingTransition(booking.Status)
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleDeclineBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.DeclineBooking(r.Context(), id, body.Reason)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncBookingTransition(booking.Status)
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Тело опционально: отмена без причины допустима
	_ = decodeBody(r, &body)

	booking, refund, err := s.bookings.CancelBooking(r.Context(), id, body.Reason)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncBookingTransition(booking.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"booking": booking,
		"refund":  refund,
	})
}

func (s *HTTPServer) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.CompleteBooking(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncBookingTransition(booking.Status)
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleSitterBookings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.GetBookingsBySitter(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handlePendingBookings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.GetPendingBookings(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// --- Messages ---

func (s *HTTPServer) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		SenderID int64  `json:"sender_id"`
		Content  string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := s.messages.SendMessage(r.Context(), bookingID, body.SenderID, body.Content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *HTTPServer) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := s.messages.GetConversation(r.Context(), bookingID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *HTTPServer) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.messages.MarkRead(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := s.messages.CountUnread(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

// --- Reviews ---

func (s *HTTPServer) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookingID int64  `json:"booking_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	review, err := s.reviews.CreateReview(r.Context(), body.BookingID, body.Rating, body.Comment)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncReviewCreated()
	writeJSON(w, http.StatusCreated, review)
}

func (s *HTTPServer) handleGetReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.reviews.GetReview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *HTTPServer) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.reviews.DeleteReview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleSitterReviews(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	take, _ := strconv.Atoi(r.URL.Query().Get("take"))

	reviews, err := s.reviews.GetReviewsForSitter(r.Context(), sitterID, skip, take)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *HTTPServer) handleSitterRating(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := s.reviews.GetRatingStats(r.Context(), sitterID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- Sitters ---

func (s *HTTPServer) handleRegisterSitter(w http.ResponseWriter, r *http.Request) {
	var sitter models.PetSitter
	if err := decodeBody(r, &sitter); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.sitters.RegisterSitter(r.Context(), &sitter); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sitter)
}

func (s *HTTPServer) handleListSitters(w http.ResponseWriter, r *http.Request) {
	sitters, err := s.sitters.ListSitters(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sitters": sitters})
}

func (s *HTTPServer) handleGetSitter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sitter, err := s.sitters.GetSitter(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	services, err := s.sitters.GetServices(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	stats, err := s.reviews.GetRatingStats(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sitter":   sitter,
		"services": services,
		"rating":   stats,
	})
}

func (s *HTTPServer) handleUpdateSitter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sitter models.PetSitter
	if err := decodeBody(r, &sitter); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sitter.ID = id

	if err := s.sitters.UpdateProfile(r.Context(), &sitter); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sitter)
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	var criteria models.SearchCriteria
	if err := decodeBody(r, &criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := s.search.Search(r.Context(), criteria)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sitters": results})
}

// --- Services ---

func (s *HTTPServer) handleGetSitterServices(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	services, err := s.sitters.GetServices(r.Context(), sitterID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *HTTPServer) handleAddService(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var svc models.Service
	if err := decodeBody(r, &svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	svc.SitterID = sitterID

	if err := s.sitters.AddService(r.Context(), &svc); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (s *HTTPServer) handleReplaceServices(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Services []models.Service `json:"services"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	services, err := s.sitters.ReplaceServices(r.Context(), sitterID, body.Services)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *HTTPServer) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var svc models.Service
	if err := decodeBody(r, &svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	svc.ID = id

	if err := s.sitters.UpdateService(r.Context(), &svc); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *HTTPServer) handleRemoveService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.sitters.RemoveService(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Photos ---

func (s *HTTPServer) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		DataURL string `json:"data_url"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sitter, err := s.sitters.AddPhoto(r.Context(), sitterID, body.DataURL)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sitter)
}

func (s *HTTPServer) handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid photo index")
		return
	}

	sitter, err := s.sitters.RemovePhoto(r.Context(), sitterID, index)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sitter)
}

// --- Availability ---

func (s *HTTPServer) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Range query: ?start=YYYY-MM-DD&end=YYYY-MM-DD returns a yes/no answer.
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr != "" && endStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
			return
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
			return
		}

		available, err := s.availability.IsSitterAvailable(r.Context(), sitterID, start, end)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"available": available})
		return
	}

	entries, err := s.availability.GetSchedule(r.Context(), sitterID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"availability": entries})
}

func (s *HTTPServer) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	sitterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Entries []models.AvailabilityUpdate `json:"entries"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entries, err := s.availability.UpdateSchedule(r.Context(), sitterID, body.Entries)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"availability": entries})
}

// --- Exports ---

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	var body struct {
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.StartDate.IsZero() || body.EndDate.IsZero() || body.EndDate.Before(body.StartDate) {
		writeError(w, http.StatusBadRequest, "start_date and end_date must form a valid range")
		return
	}

	path, err := s.exporter.ExportBookings(r.Context(), body.StartDate, body.EndDate)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": path})
}

// --- Owners and pets ---

func (s *HTTPServer) handleRegisterOwner(w http.ResponseWriter, r *http.Request) {
	var owner models.PetOwner
	if err := decodeBody(r, &owner); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.owners.RegisterOwner(r.Context(), &owner); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, owner)
}

func (s *HTTPServer) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner, err := s.owners.GetOwner(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, owner)
}

func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.owners.GetOwnerBookings(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleAddPet(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var pet models.Pet
	if err := decodeBody(r, &pet); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pet.OwnerID = ownerID

	if err := s.owners.AddPet(r.Context(), &pet); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

func (s *HTTPServer) handleGetPets(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pets, err := s.owners.GetPets(r.Context(), ownerID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pets": pets})
}

func (s *HTTPServer) handleGetPet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pet, err := s.owners.GetPet(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (s *HTTPServer) handleUpdatePet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var pet models.Pet
	if err := decodeBody(r, &pet); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pet.ID = id

	if err := s.owners.UpdatePet(r.Context(), &pet); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (s *HTTPServer) handleRemovePet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.owners.RemovePet(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
