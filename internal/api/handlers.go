package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/seqcenter/annoserve/internal/apperrors"
	"github.com/seqcenter/annoserve/internal/job"
)

// initRequest names the job and selects the replicon table format the
// client will upload.
type initRequest struct {
	Name         string                `json:"name"`
	RepliconType job.RepliconTableType `json:"repliconTableType"`
}

type initResponse struct {
	UploadLinkFasta     string          `json:"uploadLinkFasta"`
	UploadLinkProdigal  string          `json:"uploadLinkProdigal"`
	UploadLinkReplicons string          `json:"uploadLinkReplicons"`
	Job                 job.Credentials `json:"job"`
}

type listRequest struct {
	Jobs []job.Credentials `json:"jobs"`
}

type startRequest struct {
	Job    job.Credentials `json:"job"`
	Config job.JobConfig   `json:"config"`
}

func (s *Server) initJob(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RepliconType == "" {
		req.RepliconType = job.RepliconCSV
	}

	creds, links, err := s.service.Init(req.Name, req.RepliconType)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, initResponse{
		UploadLinkFasta:     links.Fasta,
		UploadLinkProdigal:  links.Prodigal,
		UploadLinkReplicons: links.Replicons,
		Job:                 creds,
	})
}

func (s *Server) startJob(w http.ResponseWriter, r *http.Request) {
	// hasReplicons defaults on; decoding over a primed value keeps an
	// explicit false from the client.
	req := startRequest{Config: job.JobConfig{HasReplicons: true}}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	origin := r.Header.Get("Origin")

	if err := s.service.Start(r.Context(), req.Job, req.Config, origin); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jobID": req.Job.ID})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	writeJSON(w, http.StatusOK, s.service.List(req.Jobs))
}

func (s *Server) jobResult(w http.ResponseWriter, r *http.Request) {
	var creds job.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	results, err := s.service.Results(creds)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) jobLogs(w http.ResponseWriter, r *http.Request) {
	var creds job.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	logs, err := s.service.Logs(r.Context(), creds)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(logs)); err != nil {
		s.logger.Error("write logs response failed", zap.Error(err))
	}
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	creds := job.Credentials{
		ID:     r.URL.Query().Get("jobID"),
		Secret: r.URL.Query().Get("secret"),
	}
	if creds.ID == "" || creds.Secret == "" {
		writeError(w, http.StatusBadRequest, "jobID and secret are required")
		return
	}
	if err := s.service.Delete(r.Context(), creds); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jobID": creds.ID})
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Version())
}

// writeAppError maps service errors onto HTTP statuses. Internal
// failures are logged in full but reported opaquely.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, status, "internal server error")
		return
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		writeError(w, status, appErr.Message)
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
