package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/MrLotU/user-profile-be/internal/auth"
	"github.com/MrLotU/user-profile-be/internal/services"
	"github.com/MrLotU/user-profile-be/internal/storage"
)

// maxPictureBytes caps profile picture uploads.
const maxPictureBytes = 5 << 20

// ProfileHandler handles profile viewing and editing.
type ProfileHandler struct {
	accounts services.AccountServiceProvider
	profiles services.ProfileServiceProvider
	pictures *storage.PictureStore
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(accounts services.AccountServiceProvider, profiles services.ProfileServiceProvider, pictures *storage.PictureStore) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, profiles: profiles, pictures: pictures}
}

// EditProfilePayload defines the structure for profile edits.
type EditProfilePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Birthday  string `json:"birthday"`
	Bio       string `json:"bio"`
}

// EditEmailPayload defines the structure for email changes. A missing
// confirmEmail field stays nil so the omitted-confirmation flow can be
// told apart from an empty one.
type EditEmailPayload struct {
	Email        string  `json:"email"`
	ConfirmEmail *string `json:"confirmEmail"`
}

// Get returns the caller's user record and profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	user, err := h.accounts.GetUserByID(session.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("User from session not found")
		respondServiceError(w, err)
		return
	}
	profile, err := h.accounts.GetProfile(session.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to load profile")
		respondError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"profile": profile,
	})
}

// Update applies an edit of the profile attributes.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var payload EditProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	edit := services.ProfileEdit{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Birthday:  payload.Birthday,
		Bio:       payload.Bio,
	}
	if err := h.profiles.EditProfile(session.UserID, edit); err != nil {
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("Failed to edit profile")
		respondServiceError(w, err)
		return
	}

	profile, err := h.accounts.GetProfile(session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateEmail applies an email change with its confirmation rules.
func (h *ProfileHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var payload EditEmailPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.profiles.EditEmail(session.UserID, payload.Email, payload.ConfirmEmail); err != nil {
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("Failed to edit email")
		respondServiceError(w, err)
		return
	}

	user, err := h.accounts.GetUserByID(session.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UploadPicture stores an uploaded profile picture and keeps its
// reference on the profile.
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes)
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("pfp")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing picture file")
		return
	}
	defer file.Close()

	name, err := h.pictures.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			respondError(w, http.StatusBadRequest, "Unsupported picture type")
			return
		}
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to store profile picture")
		respondError(w, http.StatusInternalServerError, "Failed to store picture")
		return
	}

	if err := h.profiles.SetPicture(session.UserID, name); err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to save picture reference")
		respondError(w, http.StatusInternalServerError, "Failed to save picture")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"picturePath": name})
}
