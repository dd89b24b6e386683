// Package eligibility checks participants against batch and academy restrictions.
package eligibility

import (
	"strconv"
	"time"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/models"
)

// Rule names attached to validation errors.
const (
	RuleBatchAge       = "batch_age"
	RuleAcademyAge     = "academy_age"
	RuleBatchGender    = "batch_gender"
	RuleAcademyGender  = "academy_gender"
	RuleBatchDisabled  = "batch_disability"
	RuleDisabledOnly   = "academy_disabled_only"
	RuleAcademyDisable = "academy_disability"
)

// AgeOn returns the age in whole calendar years at now.
func AgeOn(dob, now time.Time) int {
	now = now.In(dob.Location())
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// Validate returns the first eligibility failure among participants, in order.
func Validate(batch *models.BatchForBooking, academy *models.AcademyForBooking, participants []*models.ParticipantForBooking, now time.Time) error {
	for _, p := range participants {
		if err := validateParticipant(batch, academy, p, now); err != nil {
			return err
		}
	}
	return nil
}

func validateParticipant(batch *models.BatchForBooking, academy *models.AcademyForBooking, p *models.ParticipantForBooking, now time.Time) error {
	age := AgeOn(p.DateOfBirth, now)
	if !batch.AgeRange.Contains(age) {
		return ageError(p, age, batch.AgeRange, "batch", RuleBatchAge)
	}
	if !academy.AgeRange.Contains(age) {
		return ageError(p, age, academy.AgeRange, "academy", RuleAcademyAge)
	}

	if p.Gender != nil {
		if len(batch.Genders) > 0 && !containsGender(batch.Genders, *p.Gender) {
			return apperrors.Validation("Participant %s (%s) is not eligible for this batch: allowed genders are %v", p.Name, *p.Gender, batch.Genders).
				WithDetail("participant", p.Name).WithDetail("rule", RuleBatchGender)
		}
		if len(academy.Genders) > 0 && !containsGender(academy.Genders, *p.Gender) {
			return apperrors.Validation("Participant %s (%s) is not eligible for this academy: allowed genders are %v", p.Name, *p.Gender, academy.Genders).
				WithDetail("participant", p.Name).WithDetail("rule", RuleAcademyGender)
		}
	}

	switch {
	case !batch.AllowDisabled:
		if p.IsDisabled {
			return apperrors.Validation("Participant %s is not eligible: this batch does not accept participants with disabilities", p.Name).
				WithDetail("participant", p.Name).WithDetail("rule", RuleBatchDisabled)
		}
	case academy.DisabledOnly:
		if !p.IsDisabled {
			return apperrors.Validation("Participant %s is not eligible: this academy only accepts participants with disabilities", p.Name).
				WithDetail("participant", p.Name).WithDetail("rule", RuleDisabledOnly)
		}
	case !academy.AllowDisabled:
		if p.IsDisabled {
			return apperrors.Validation("Participant %s is not eligible: this academy does not accept participants with disabilities", p.Name).
				WithDetail("participant", p.Name).WithDetail("rule", RuleAcademyDisable)
		}
	}
	return nil
}

func ageError(p *models.ParticipantForBooking, age int, r models.AgeRange, scope, rule string) error {
	return apperrors.Validation("Participant %s (age %d) is not eligible for this %s: allowed age range is %s", p.Name, age, scope, formatRange(r)).
		WithDetail("participant", p.Name).
		WithDetail("rule", rule).
		WithDetail("age", age)
}

func formatRange(r models.AgeRange) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return strconv.Itoa(*r.Min) + "-" + strconv.Itoa(*r.Max)
	case r.Min != nil:
		return strconv.Itoa(*r.Min) + "+"
	case r.Max != nil:
		return "up to " + strconv.Itoa(*r.Max)
	}
	return "any"
}

func containsGender(list []models.Gender, g models.Gender) bool {
	for _, x := range list {
		if x == g {
			return true
		}
	}
	return false
}
