package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ComfortRange is the thermally acceptable band for the room.
type ComfortRange struct {
	MinTemp   float64   `json:"min_temp"`
	MaxTemp   float64   `json:"max_temp"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate requires finite bounds with MinTemp < MaxTemp.
func (r ComfortRange) Validate() error {
	if math.IsNaN(r.MinTemp) || math.IsInf(r.MinTemp, 0) || math.IsNaN(r.MaxTemp) || math.IsInf(r.MaxTemp, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidComfortRange)
	}
	if r.MinTemp >= r.MaxTemp {
		return fmt.Errorf("%w: min_temp %.1f must be below max_temp %.1f", ErrInvalidComfortRange, r.MinTemp, r.MaxTemp)
	}
	return nil
}

// Contains reports whether t lies in [MinTemp, MaxTemp].
func (r ComfortRange) Contains(t float64) bool {
	return t >= r.MinTemp && t <= r.MaxTemp
}

// Midpoint returns the centre of the band.
func (r ComfortRange) Midpoint() float64 {
	return (r.MinTemp + r.MaxTemp) / 2
}

// Gender of the occupant profile.
type Gender string

// Genders.
const (
	Female Gender = "F"
	Male   Gender = "M"
)

// ParseGender accepts F/M, female/male and the numeric 0 (female) / 1 (male) codes.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "female", "0", "0.0":
		return Female, nil
	case "m", "male", "1", "1.0":
		return Male, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, s)
}

// Profile holds the occupant attributes the comfort range is derived from.
type Profile struct {
	Gender Gender  `json:"gender"`
	Age    float64 `json:"age"`
	BMI    float64 `json:"bmi"`
}

// Validate checks that the profile is usable.
func (p Profile) Validate() error {
	if p.Gender != Female && p.Gender != Male {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, p.Gender)
	}
	if math.IsNaN(p.Age) || p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("%w: age %v out of range", ErrInvalidProfile, p.Age)
	}
	if math.IsNaN(p.BMI) || math.IsInf(p.BMI, 0) || p.BMI <= 0 {
		return fmt.Errorf("%w: bmi %v out of range", ErrInvalidProfile, p.BMI)
	}
	return nil
}

// Vote is an explicit comfort report from the occupant.
type Vote string

// Votes.
const (
	VoteHot         Vote = "hot"
	VoteCold        Vote = "cold"
	VoteComfortable Vote = "comfortable"
)

// ParseVote validates an occupant vote.
func ParseVote(s string) (Vote, error) {
	switch v := Vote(strings.ToLower(strings.TrimSpace(s))); v {
	case VoteHot, VoteCold, VoteComfortable:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVote, s)
}

// UserFeedback is an occupant vote kept for later analysis.
type UserFeedback struct {
	ID        string    `json:"id"`
	Vote      Vote      `json:"feedback"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}
