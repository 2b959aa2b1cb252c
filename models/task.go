package models

import "time"

// TaskType is the closed set of task categories in the catalog.
type TaskType string

const (
	TaskVideo           TaskType = "video"
	TaskQuiz            TaskType = "quiz"
	TaskOfferwall       TaskType = "offerwall"
	TaskTapjoyOfferwall TaskType = "tapjoy_offerwall"
	TaskScratchCard     TaskType = "scratch_card"
	TaskSpinWheel       TaskType = "spin_wheel"
	TaskPuzzle          TaskType = "puzzle"
)

// GameTaskTypes are completed instantly with their own per-type daily cap;
// together with the offerwall types they are excluded from the global daily
// task limit.
var GameTaskTypes = []TaskType{TaskScratchCard, TaskSpinWheel, TaskPuzzle, TaskQuiz}

// OfferwallTaskTypes are fulfilled by partner postbacks, not by the task
// completion flow.
var OfferwallTaskTypes = []TaskType{TaskOfferwall, TaskTapjoyOfferwall}

// Task is a catalog entry users can start and complete for coins.
type Task struct {
	ID            string   `gorm:"primaryKey;type:uuid" json:"id"`
	Type          TaskType `gorm:"type:varchar(20);not null" json:"type"`
	Title         string   `gorm:"not null" json:"title"`
	Slug          string   `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string   `gorm:"type:text" json:"description,omitempty"`
	RewardCoins   int64    `gorm:"default:0" json:"reward_coins"`
	AdNetwork     string   `json:"ad_network,omitempty"`
	AdPlacementID string   `json:"ad_placement_id,omitempty"`
	IsActive      bool     `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserTask lifecycle states.
const (
	UserTaskPending   = "pending"
	UserTaskCompleted = "completed"
	UserTaskCancelled = "cancelled"
)

// UserTask records a single attempt at a task, including the timing and
// client fingerprint fields the fraud scorer evaluates.
type UserTask struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	TaskID string `gorm:"type:uuid;index;not null" json:"task_id"`
	Status string `gorm:"type:varchar(20);default:'pending'" json:"status"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	IPAddress string `json:"ip_address,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`

	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
