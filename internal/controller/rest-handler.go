package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/fanout"
	"github.com/sharetube/syncroom/internal/repository/media"
	mediaService "github.com/sharetube/syncroom/internal/service/media"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/rest"
)

// multipart parts beyond this size are spooled to disk
const uploadMemory = 32 << 20

func (c controller) listRooms(w http.ResponseWriter, r *http.Request) {
	var rooms []domain.RoomCount
	if err := c.dispatcher.Do(r.Context(), "list-rooms", func(s *room.Service) ([]fanout.Outbound, error) {
		rooms = s.ListRooms()
		return nil, nil
	}); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to list rooms", "error", err)
		rest.WriteJSON(w, http.StatusServiceUnavailable, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rooms)
}

type createRoomInput struct {
	Name string `json:"name" validate:"required,max=64"`
}

// createRoom is the HTTP form of the create-room message.
func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if err := rest.ReadJSON(r, &input); err != nil {
		c.logger.InfoContext(r.Context(), "createRoom", "read json err", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	var (
		state   room.RoomState
		created bool
	)
	err := c.dispatcher.Do(r.Context(), "create-room", func(s *room.Service) ([]fanout.Outbound, error) {
		_, lookupErr := s.GetRoom(input.Name)
		created = errors.Is(lookupErr, room.ErrNotFound)

		outs, err := s.CreateRoom("", input.Name)
		if err != nil {
			return nil, err
		}
		state, err = s.GetRoom(input.Name)
		return outs, err
	})
	switch {
	case errors.Is(err, room.ErrMalformed):
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	case err != nil:
		c.logger.InfoContext(r.Context(), "createRoom", "err", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	rest.WriteJSON(w, status, domain.RoomCount{Name: state.Name, UserCount: state.UserCount})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var state room.RoomState
	err := c.dispatcher.Do(r.Context(), "get-room", func(s *room.Service) ([]fanout.Outbound, error) {
		var err error
		state, err = s.GetRoom(name)
		return nil, err
	})
	switch {
	case errors.Is(err, room.ErrNotFound):
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		return
	case err != nil:
		c.logger.ErrorContext(r.Context(), "failed to get room", "room", name, "error", err)
		rest.WriteJSON(w, http.StatusServiceUnavailable, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, state)
}

func (c controller) listVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := c.mediaService.ListVideos(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to list videos", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to list videos"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, videos)
}

func (c controller) getVideo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	video, err := c.mediaService.GetVideo(r.Context(), name)
	switch {
	case errors.Is(err, media.ErrVideoNotFound):
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "video not found"})
		return
	case err != nil:
		c.logger.ErrorContext(r.Context(), "failed to get video", "name", name, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get video"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, video)
}

func (c controller) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			rest.WriteJSON(w, http.StatusRequestEntityTooLarge, rest.Envelope{"error": "upload too large"})
			return
		}
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	video, header, err := r.FormFile("video")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "video file is required"})
		return
	}
	defer video.Close()

	params := mediaService.UploadParams{
		Filename: header.Filename,
		Video:    video,
	}

	thumbnail, _, err := r.FormFile("thumbnail")
	switch {
	case err == nil:
		defer thumbnail.Close()
		params.Thumbnail = thumbnail
	case !errors.Is(err, http.ErrMissingFile):
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	uploaded, err := c.mediaService.Upload(r.Context(), &params)
	switch {
	case errors.Is(err, mediaService.ErrUnsupportedMedia):
		rest.WriteJSON(w, http.StatusUnsupportedMediaType, rest.Envelope{"error": err.Error()})
		return
	case errors.Is(err, mediaService.ErrInvalidFilename):
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	case err != nil:
		c.logger.ErrorContext(r.Context(), "failed to upload video", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to store upload"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, uploaded)
}
