package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEditProfile_BioLength(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	profiles := NewProfileService(db)

	user, err := accounts.CreateUser("jdoe", testPassword)
	require.NoError(t, err)

	err = profiles.EditProfile(user.ID, ProfileEdit{FirstName: "Ada", LastName: "Lovelace", Bio: "short"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "bio", ve.Field)
	assert.Equal(t, "Bio must be 10 characters or more", ve.Message)

	// Exactly 10 characters is still too short.
	err = profiles.EditProfile(user.ID, ProfileEdit{FirstName: "Ada", LastName: "Lovelace", Bio: "abcdefghij"})
	require.ErrorAs(t, err, &ve)

	err = profiles.EditProfile(user.ID, ProfileEdit{FirstName: "Ada", LastName: "Lovelace", Bio: "this is a sufficiently long bio"})
	require.NoError(t, err)

	got, err := accounts.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "this is a sufficiently long bio", got.Bio)
}

func TestEditProfile_NamesRequired(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	profiles := NewProfileService(db)

	user, err := accounts.CreateUser("jdoe", testPassword)
	require.NoError(t, err)

	var ve *ValidationError
	err = profiles.EditProfile(user.ID, ProfileEdit{LastName: "Lovelace", Bio: "a sufficiently long bio"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "first", ve.Field)
	assert.Equal(t, "This field is required.", ve.Message)

	err = profiles.EditProfile(user.ID, ProfileEdit{FirstName: "Ada", Bio: "a sufficiently long bio"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "last", ve.Field)

	// The rejected edit left the stored names alone, so a compliant
	// password change still goes through. An empty stored name would
	// match every password as a substring and block changes forever.
	got, err := accounts.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "None", got.FirstName)
	assert.Equal(t, "None", got.LastName)

	_, err = accounts.ChangePassword(user.ID, testPassword, goodPassword, goodPassword)
	require.NoError(t, err)
}

func TestEditProfile_Birthday(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	profiles := NewProfileService(db)

	user, err := accounts.CreateUser("jdoe", testPassword)
	require.NoError(t, err)

	edit := ProfileEdit{FirstName: "Ada", LastName: "Lovelace", Bio: "a sufficiently long bio", Birthday: "1815-12-10"}
	require.NoError(t, profiles.EditProfile(user.ID, edit))

	got, err := accounts.GetProfile(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Birthday)
	assert.True(t, got.Birthday.Equal(time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC)),
		"got %v", got.Birthday)

	edit.Birthday = "not a date"
	err = profiles.EditProfile(user.ID, edit)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "birthday", ve.Field)

	// Birthday stays optional.
	edit.Birthday = ""
	require.NoError(t, profiles.EditProfile(user.ID, edit))
	got, err = accounts.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Birthday)
}

func TestEditProfile_KeepsPictureWhenOmitted(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	profiles := NewProfileService(db)

	user, err := accounts.CreateUser("jdoe", testPassword)
	require.NoError(t, err)
	require.NoError(t, profiles.SetPicture(user.ID, "abc.png"))

	edit := ProfileEdit{FirstName: "Ada", LastName: "Lovelace", Bio: "a sufficiently long bio"}
	require.NoError(t, profiles.EditProfile(user.ID, edit))

	got, err := accounts.GetProfile(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PicturePath)
	assert.Equal(t, "abc.png", *got.PicturePath)

	edit.PicturePath = strPtr("new.png")
	require.NoError(t, profiles.EditProfile(user.ID, edit))
	got, err = accounts.GetProfile(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PicturePath)
	assert.Equal(t, "new.png", *got.PicturePath)
}

func TestEditEmail(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	profiles := NewProfileService(db)

	user, err := accounts.CreateUser("jdoe", testPassword)
	require.NoError(t, err)
	user.Email = "a@x.com"
	_, err = accounts.SaveUser(user)
	require.NoError(t, err)

	t.Run("unchanged email needs no confirmation", func(t *testing.T) {
		require.NoError(t, profiles.EditEmail(user.ID, "a@x.com", nil))
	})

	t.Run("changed email without confirmation is rejected", func(t *testing.T) {
		err := profiles.EditEmail(user.ID, "b@x.com", nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Emails don't match!", ve.Message)
	})

	t.Run("confirmation matches case-insensitively", func(t *testing.T) {
		require.NoError(t, profiles.EditEmail(user.ID, "b@x.com", strPtr("B@x.com")))

		got, err := accounts.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", got.Email)
	})

	t.Run("mismatched confirmation is rejected", func(t *testing.T) {
		err := profiles.EditEmail(user.ID, "c@x.com", strPtr("d@x.com"))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Emails don't match!", ve.Message)

		got, lookupErr := accounts.GetUserByID(user.ID)
		require.NoError(t, lookupErr)
		assert.Equal(t, "b@x.com", got.Email)
	})

	t.Run("invalid address is rejected", func(t *testing.T) {
		err := profiles.EditEmail(user.ID, "not-an-email", strPtr("not-an-email"))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email", ve.Field)
	})
}
