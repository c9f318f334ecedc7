package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	fsrepo "AssetKeeper/internal/cli/repo/fs"
	"AssetKeeper/internal/cli/service"
	"AssetKeeper/internal/config"
)

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a sealed blob to the server" }
func (uploadCmd) Usage() string       { return "upload <name> <credential|model> <file>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	name, kind, path := args[0], args[1], args[2]
	if kind != kindCredential && kind != kindModel {
		return ErrUsage
	}
	sealed, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if kind == kindCredential {
		sealed = bytes.TrimSpace(sealed)
	}
	c := service.NewAssetClient(cfg.ServerURL, fsrepo.AuthFSStore{}, nil, nil)
	created, err := c.Upload(ctx, name, kind, sealed)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(Out, "✓ Загружен новый ассет %s\n", name)
	} else {
		fmt.Fprintf(Out, "✓ Ассет %s обновлён\n", name)
	}
	return nil
}

func init() { RegisterCmd(uploadCmd{}) }
