package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	configsqlite "fisski-backend/lib/configutil/sqlite"
	"fisski-backend/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	var database *sql.DB
	if params.DbSchema != "" {
		var err error
		database, err = configsqlite.Struct{File: params.DbPath}.OpenDB(params.DbSchema)
		if err != nil {
			t.Fatal(err)
		}
	}

	return ServiceResult{
		DB: database,
	}, cleanup
}
