package dto

import "time"

// ReconcileReport counts the repairs made by one reconcile run
type ReconcileReport struct {
	TasksUnassigned int           `json:"tasksUnassigned"`
	TaskNamesFixed  int           `json:"taskNamesFixed"`
	UsersRewritten  int           `json:"usersRewritten"`
	UsersScanned    int           `json:"usersScanned"`
	TasksScanned    int           `json:"tasksScanned"`
	StartedAt       time.Time     `json:"startedAt"`
	Duration        time.Duration `json:"duration"`
}

func (r *ReconcileReport) Repairs() int {
	return r.TasksUnassigned + r.TaskNamesFixed + r.UsersRewritten
}

type ExportResult struct {
	Provider string   `json:"provider"`
	Prefix   string   `json:"prefix"`
	Users    int      `json:"users"`
	Tasks    int      `json:"tasks"`
	Objects  []string `json:"objects"`
}
