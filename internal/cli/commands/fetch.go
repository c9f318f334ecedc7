package commands

import (
	"context"
	"fmt"

	"AssetKeeper/internal/cli/bootstrap"
	"AssetKeeper/internal/cli/crypto"
	fsrepo "AssetKeeper/internal/cli/repo/fs"
	"AssetKeeper/internal/cli/service"
	"AssetKeeper/internal/config"
)

type fetchCmd struct{}

func (fetchCmd) Name() string { return "fetch" }
func (fetchCmd) Description() string {
	return "Download a sealed asset, cache it and write the decrypted output"
}
func (fetchCmd) Usage() string { return "fetch <name> <out>" }

func (fetchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	name, out := args[0], args[1]
	// секрет проверяется до сети
	d, err := crypto.Decryptor(cfg.AESSecretKey)
	if err != nil {
		return err
	}
	cache, done, err := bootstrap.OpenAssetCache(cfg)
	if err != nil {
		return err
	}
	defer done()

	c := service.NewAssetClient(cfg.ServerURL, fsrepo.AuthFSStore{}, cache, d)
	a, plain, fromCache, err := c.Fetch(ctx, name)
	if err != nil {
		return err
	}
	if fromCache {
		fmt.Fprintln(Out, "! Сервер недоступен, использована локальная копия")
	}
	if err := crypto.WriteOutput(out, plain); err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ %s (%s) → %s (%d байт)\n", a.Name, a.Kind, out, len(plain))
	return nil
}

func init() { RegisterCmd(fetchCmd{}) }
