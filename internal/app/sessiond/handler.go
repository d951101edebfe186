package sessiond

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/gorilla/schema"
	"github.com/minebase/yggdrasil/pkg/yggdrasil"
)

func hasJoinedHandler(svc *Service) http.HandlerFunc {
	decoder := schema.NewDecoder()
	return func(w http.ResponseWriter, r *http.Request) {
		reqDTO := &struct {
			Username string `schema:"username,required"`
			ServerID string `schema:"serverId,required"`
			IP       string `schema:"ip"`
		}{}

		if err := decoder.Decode(reqDTO, r.URL.Query()); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		ip, err := parseClientIP(reqDTO.IP)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		playerUUID, err := svc.ValidateSession(r.Context(), reqDTO.Username, reqDTO.ServerID, ip)
		if err != nil {
			if errors.Is(err, yggdrasil.ErrSessionNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		dto := struct {
			Username string `json:"username"`
			UUID     string `json:"uuid"`
		}{
			Username: reqDTO.Username,
			UUID:     playerUUID.String(),
		}

		render.JSON(w, r, dto)
	}
}

func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerUUID, err := uuid.FromString(chi.URLParam(r, "uuid"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		profile, err := svc.Profile(r.Context(), playerUUID)
		if err != nil {
			var statusErr yggdrasil.StatusError
			if errors.As(err, &statusErr) && statusErr.Code == http.StatusNoContent {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		render.JSON(w, r, profile)
	}
}

func computeHashHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqDTO := struct {
			ServerID     string `json:"serverId"`
			SharedSecret string `json:"sharedSecret"`
			PublicKey    string `json:"publicKey"`
		}{}

		if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		secretBytes, err := base64.StdEncoding.DecodeString(reqDTO.SharedSecret)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if len(secretBytes) != len(yggdrasil.SharedSecret{}) {
			http.Error(w, "sharedSecret must be 16 bytes", http.StatusUnprocessableEntity)
			return
		}

		publicKey, err := base64.StdEncoding.DecodeString(reqDTO.PublicKey)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		sharedSecret := yggdrasil.SharedSecret{}
		copy(sharedSecret[:], secretBytes)

		dto := struct {
			ServerHash string `json:"serverHash"`
		}{
			ServerHash: yggdrasil.SessionHash(reqDTO.ServerID, sharedSecret, publicKey),
		}

		render.JSON(w, r, dto)
	}
}
