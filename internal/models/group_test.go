package models_test

import (
	"testing"
	"time"

	"lovechat/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestGroupName_Symmetric(t *testing.T) {
	users := []string{"ann", "bob", "cat", "a.b", "zed_1", "Ann", " bob "}

	for _, a := range users {
		for _, b := range users {
			assert.Equal(t, models.GroupName(a, b), models.GroupName(b, a), "pair (%q, %q)", a, b)
		}
	}
}

func TestGroupName_Format(t *testing.T) {
	assert.Equal(t, "ann-bob", models.GroupName("bob", "ann"))
	assert.Equal(t, "ann-bob", models.GroupName("ANN", "bob"))
}

func TestGroup_ConnectionIDs(t *testing.T) {
	g := &models.Group{
		Name: "ann-bob",
		Connections: []models.Connection{
			{ConnectionID: "c1", Username: "ann", GroupName: "ann-bob"},
			{ConnectionID: "c2", Username: "ann", GroupName: "ann-bob"},
		},
	}
	assert.Empty(t, (&models.Group{}).ConnectionIDs())

	assert.Equal(t, []string{"c1", "c2"}, g.ConnectionIDs())
}

func TestMessage_VisibleTo(t *testing.T) {
	read := time.Now()
	m := &models.Message{
		SenderUsername:    "ann",
		RecipientUsername: "bob",
		DateRead:          &read,
		SenderDeleted:     true,
	}

	assert.False(t, m.VisibleTo("ann"))
	assert.True(t, m.VisibleTo("bob"))
	assert.False(t, m.VisibleTo("cat"))
	assert.True(t, m.IsRead())
}

func TestNewPagedList(t *testing.T) {
	page := models.NewPagedList([]int{1, 2}, 5, 1, 2)

	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.TotalCount)
	assert.Len(t, page.Items, 2)

	empty := models.NewPagedList[int](nil, 0, 1, 10)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
