package cli

import (
	"context"
	"fmt"
)

// Export writes the current user's tasks to the backup store and prints the
// key needed to import them again.
func (a *App) Export(ctx context.Context) error {
	key, n, err := a.backupService.Export(ctx, a.user)
	if err != nil {
		return a.fail(ctx, "export", err)
	}

	a.println(fmt.Sprintf("Exported %d task(s) to %s", n, a.backupService.Location()))
	a.println("Key:", key)
	return nil
}

func (a *App) Import(ctx context.Context, key string) error {
	n, err := a.backupService.Import(ctx, a.user, key)
	if err != nil {
		return a.fail(ctx, "import", err)
	}

	a.println(fmt.Sprintf("Imported %d task(s).", n))
	return nil
}
