package eligibility

import (
	"errors"
	"testing"
	"time"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/chris/academy-booking-core/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func genderPtr(g models.Gender) *models.Gender { return &g }

var now = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func dob(years int) time.Time {
	return now.AddDate(-years, 0, -1)
}

func TestAgeOn(t *testing.T) {
	birth := time.Date(2012, time.March, 16, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 13, AgeOn(birth, now))
	assert.Equal(t, 14, AgeOn(birth, now.AddDate(0, 0, 1)))
	// Leap-day birthdays turn a year older on March 1st in non-leap years.
	leap := time.Date(2012, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 12, AgeOn(leap, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 13, AgeOn(leap, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidate(t *testing.T) {
	batch := func() *models.BatchForBooking {
		return &models.BatchForBooking{
			ID:            "batch1",
			AgeRange:      models.AgeRange{Min: intPtr(8), Max: intPtr(14)},
			AllowDisabled: true,
		}
	}
	academy := func() *models.AcademyForBooking {
		return &models.AcademyForBooking{ID: "center1", AllowDisabled: true}
	}

	t.Run("Success", func(t *testing.T) {
		participants := []*models.ParticipantForBooking{
			{ID: "p1", Name: "Asha", DateOfBirth: dob(10), Gender: genderPtr(models.Female)},
			{ID: "p2", Name: "Ravi", DateOfBirth: dob(12)},
		}

		assert.NoError(t, Validate(batch(), academy(), participants, now))
	})

	t.Run("Batch Age Fails", func(t *testing.T) {
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Kiran", DateOfBirth: dob(17)}}

		err := Validate(batch(), academy(), participants, now)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), "Kiran")
		assert.Contains(t, err.Error(), "8-14")
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, RuleBatchAge, appErr.Details["rule"])
	})

	t.Run("Academy Age Fails", func(t *testing.T) {
		a := academy()
		a.AgeRange = models.AgeRange{Min: intPtr(11)}
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Meera", DateOfBirth: dob(9)}}

		err := Validate(batch(), a, participants, now)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Meera")
		assert.Contains(t, err.Error(), "11+")
	})

	t.Run("Unset Gender Skips Gender Checks", func(t *testing.T) {
		b := batch()
		b.Genders = []models.Gender{models.Male}
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Sam", DateOfBirth: dob(10)}}

		assert.NoError(t, Validate(b, academy(), participants, now))
	})

	t.Run("Batch Gender Fails", func(t *testing.T) {
		b := batch()
		b.Genders = []models.Gender{models.Male}
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Asha", DateOfBirth: dob(10), Gender: genderPtr(models.Female)}}

		err := Validate(b, academy(), participants, now)

		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, RuleBatchGender, appErr.Details["rule"])
	})

	t.Run("Academy Gender Fails", func(t *testing.T) {
		a := academy()
		a.Genders = []models.Gender{models.Female}
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Ravi", DateOfBirth: dob(10), Gender: genderPtr(models.Male)}}

		err := Validate(batch(), a, participants, now)

		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, RuleAcademyGender, appErr.Details["rule"])
	})

	t.Run("Batch Disallows Disabled Regardless Of Academy", func(t *testing.T) {
		b := batch()
		b.AllowDisabled = false
		a := academy()
		a.DisabledOnly = true
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Dev", DateOfBirth: dob(10), IsDisabled: true}}

		err := Validate(b, a, participants, now)

		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, RuleBatchDisabled, appErr.Details["rule"])
	})

	t.Run("Disabled Only Academy Fails", func(t *testing.T) {
		a := academy()
		a.DisabledOnly = true
		participants := []*models.ParticipantForBooking{
			{ID: "p1", Name: "Dev", DateOfBirth: dob(10), IsDisabled: true},
			{ID: "p2", Name: "Nila", DateOfBirth: dob(10)},
		}

		err := Validate(batch(), a, participants, now)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Nila")
	})

	t.Run("Academy Disallows Disabled Fails", func(t *testing.T) {
		a := academy()
		a.AllowDisabled = false
		participants := []*models.ParticipantForBooking{{ID: "p1", Name: "Dev", DateOfBirth: dob(10), IsDisabled: true}}

		err := Validate(batch(), a, participants, now)

		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, RuleAcademyDisable, appErr.Details["rule"])
	})
}
