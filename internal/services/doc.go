// Package services holds the business logic behind the terminal front end:
// account registration and login, session persistence, encrypted task
// management and backups.
//
// Services run against a *sql.DB and obtain repositories from a
// storage.RepositoryManager, so multi-step writes share one transaction via
// dbx.WithTx.
package services
