package handler

import (
	"teaching-hours/backend/config"
	"teaching-hours/backend/internal/service"
)

// Handler aggregate of every HTTP handler
type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	SchoolYear     *SchoolYearHandler
	Week           *WeekHandler
	Class          *ClassHandler
	Subject        *SubjectHandler
	Teacher        *TeacherHandler
	TeachingRecord *TeachingRecordHandler
	Export         *ExportHandler
}

// NewHandler wires handlers to their services
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth, &cfg.Auth),
		User:           NewUserHandler(svc.User),
		SchoolYear:     NewSchoolYearHandler(svc.SchoolYear),
		Week:           NewWeekHandler(svc.Week, svc.SchoolYear),
		Class:          NewClassHandler(svc.Class, svc.SchoolYear),
		Subject:        NewSubjectHandler(svc.Subject, svc.SchoolYear),
		Teacher:        NewTeacherHandler(svc.Teacher, svc.SchoolYear),
		TeachingRecord: NewTeachingRecordHandler(svc.TeachingRecord),
		Export:         NewExportHandler(svc.Export),
	}
}
