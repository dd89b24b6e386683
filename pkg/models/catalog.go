package models

import (
	"time"

	"github.com/chris/academy-booking-core/pkg/money"
)

// The types below are read-only projections of catalog data owned by other services.
// Each carries only the fields the booking core needs.

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// AgeRange is inclusive on both ends. A nil bound is open.
type AgeRange struct {
	Min *int `json:"min,omitempty" dynamodbav:"min,omitempty"`
	Max *int `json:"max,omitempty" dynamodbav:"max,omitempty"`
}

// Contains reports whether age is within the range.
func (r AgeRange) Contains(age int) bool {
	if r.Min != nil && age < *r.Min {
		return false
	}
	if r.Max != nil && age > *r.Max {
		return false
	}
	return true
}

// Capacity holds the batch limit. A nil Max means unlimited.
type Capacity struct {
	Max *int `json:"max,omitempty" dynamodbav:"max,omitempty"`
}

type BatchForBooking struct {
	ID            string        `json:"id" dynamodbav:"id"`
	Name          string        `json:"name" dynamodbav:"name"`
	CenterID      string        `json:"center_id" dynamodbav:"center_id"`
	SportID       string        `json:"sport_id" dynamodbav:"sport_id"`
	Capacity      Capacity      `json:"capacity" dynamodbav:"capacity"`
	AgeRange      AgeRange      `json:"age_range" dynamodbav:"age_range"`
	Genders       []Gender      `json:"genders,omitempty" dynamodbav:"genders,omitempty"`
	AllowDisabled bool          `json:"allow_disabled" dynamodbav:"allow_disabled"`
	AdmissionFee  money.Amount  `json:"admission_fee" dynamodbav:"admission_fee"`
	BaseFee       money.Amount  `json:"base_fee" dynamodbav:"base_fee"`
	DiscountedFee *money.Amount `json:"discounted_fee,omitempty" dynamodbav:"discounted_fee,omitempty"`
	Currency      string        `json:"currency,omitempty" dynamodbav:"currency,omitempty"`
	IsPublished   bool          `json:"is_published" dynamodbav:"is_published"`
	IsActive      bool          `json:"is_active" dynamodbav:"is_active"`
	IsDeleted     bool          `json:"is_deleted" dynamodbav:"is_deleted"`
}

// EffectiveFee is the discounted fee when one is set, otherwise the base fee.
func (b *BatchForBooking) EffectiveFee() money.Amount {
	if b.DiscountedFee != nil {
		return *b.DiscountedFee
	}
	return b.BaseFee
}

// AcademyForBooking is the center owning a batch. CommissionRate overrides the
// platform default when set.
type AcademyForBooking struct {
	ID             string      `json:"id" dynamodbav:"id"`
	Name           string      `json:"name" dynamodbav:"name"`
	OwnerUserID    string      `json:"owner_user_id" dynamodbav:"owner_user_id"`
	AgeRange       AgeRange    `json:"age_range" dynamodbav:"age_range"`
	Genders        []Gender    `json:"genders,omitempty" dynamodbav:"genders,omitempty"`
	AllowDisabled  bool        `json:"allow_disabled" dynamodbav:"allow_disabled"`
	DisabledOnly   bool        `json:"disabled_only" dynamodbav:"disabled_only"`
	CommissionRate *money.Rate `json:"commission_rate,omitempty" dynamodbav:"commission_rate,omitempty"`
	IsPublished    bool        `json:"is_published" dynamodbav:"is_published"`
	IsApproved     bool        `json:"is_approved" dynamodbav:"is_approved"`
	IsActive       bool        `json:"is_active" dynamodbav:"is_active"`
	IsDeleted      bool        `json:"is_deleted" dynamodbav:"is_deleted"`
}

type ParticipantForBooking struct {
	ID          string    `json:"id" dynamodbav:"id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	DateOfBirth time.Time `json:"date_of_birth" dynamodbav:"date_of_birth"`
	Gender      *Gender   `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	IsDisabled  bool      `json:"is_disabled" dynamodbav:"is_disabled"`
	IsDeleted   bool      `json:"is_deleted" dynamodbav:"is_deleted"`
}

type UserForBooking struct {
	ID        string `json:"id" dynamodbav:"id"`
	Name      string `json:"name" dynamodbav:"name"`
	IsActive  bool   `json:"is_active" dynamodbav:"is_active"`
	IsDeleted bool   `json:"is_deleted" dynamodbav:"is_deleted"`
}

// PayoutAccount is the academy's bank/transfer account, bound to payouts once active.
type PayoutAccount struct {
	ID        string `json:"id" dynamodbav:"id"`
	CenterID  string `json:"center_id" dynamodbav:"center_id"`
	IsActive  bool   `json:"is_active" dynamodbav:"is_active"`
	IsDeleted bool   `json:"is_deleted" dynamodbav:"is_deleted"`
}
