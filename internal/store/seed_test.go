package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSeedDemoData_SkipsWhenUsersExist(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	assert.NoError(t, store.SeedDemoData(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
