package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Meal struct {
	Name      string          `json:"name"`
	Time      string          `json:"time"` // HH:MM
	Calories  decimal.Decimal `json:"calories"`
	Completed bool            `json:"completed"`
}

type RoutineDay struct {
	Day   int    `json:"day"`
	Meals []Meal `json:"meals"`
}

type Diet struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CreatedAt    time.Time
	ModifiedAt   time.Time
	Age          int
	Gender       string
	Height       decimal.Decimal
	Weights      []decimal.Decimal // weight history, the last one is the current
	TargetWeight decimal.Decimal
	Diabetes     string
	Routine      []RoutineDay
}
