package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/simha10/SAMS-sub000/internal/handler/http/response"
	"github.com/simha10/SAMS-sub000/internal/service/jobs"
)

type JobsHandler interface {
	MarkAbsentees(w http.ResponseWriter, r *http.Request)
	AutoCheckout(w http.ResponseWriter, r *http.Request)
	DailySummary(w http.ResponseWriter, r *http.Request)
	BirthdayNotices(w http.ResponseWriter, r *http.Request)
}

type jobsHandlerImpl struct {
	attendanceJobs *jobs.AttendanceJobs
	notifyJobs     *jobs.NotifyJobs
}

func NewJobsHandler(attendanceJobs *jobs.AttendanceJobs, notifyJobs *jobs.NotifyJobs) JobsHandler {
	return &jobsHandlerImpl{
		attendanceJobs: attendanceJobs,
		notifyJobs:     notifyJobs,
	}
}

func (h *jobsHandlerImpl) MarkAbsentees(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.attendanceJobs.MarkAbsentees)
}

func (h *jobsHandlerImpl) AutoCheckout(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.attendanceJobs.AutoCheckout)
}

func (h *jobsHandlerImpl) DailySummary(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.notifyJobs.DailySummary)
}

func (h *jobsHandlerImpl) BirthdayNotices(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.notifyJobs.BirthdayNotices)
}

// respond runs the job and translates its outcome. A skipped run is a
// 200 so the external scheduler treats it as done; a store outage is a
// 503 so it retries later.
func (h *jobsHandlerImpl) respond(w http.ResponseWriter, r *http.Request, run func(context.Context) (jobs.Result, error)) {
	result, err := run(r.Context())
	if err != nil {
		if errors.Is(err, jobs.ErrStoreUnavailable) {
			response.ServiceUnavailable(w, "Datastore unavailable, retry later")
			return
		}
		response.InternalServerError(w, "Job execution failed")
		return
	}

	if result.Skipped {
		response.SuccessWithMessage(w, "Job already executed today", result)
		return
	}
	response.SuccessWithMessage(w, "Job executed", result)
}
