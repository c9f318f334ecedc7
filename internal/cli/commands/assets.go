package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"AssetKeeper/internal/cli/bootstrap"
	fsrepo "AssetKeeper/internal/cli/repo/fs"
	"AssetKeeper/internal/cli/service"
	"AssetKeeper/internal/config"
)

type assetsCmd struct{}

func (assetsCmd) Name() string        { return "assets" }
func (assetsCmd) Description() string { return "Показать ассеты в локальном кэше (--remote: на сервере)" }
func (assetsCmd) Usage() string       { return "assets [--remote]" }

func (assetsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("assets", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	remote := fs.Bool("remote", false, "список с сервера")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	if *remote {
		c := service.NewAssetClient(cfg.ServerURL, fsrepo.AuthFSStore{}, nil, nil)
		list, err := c.Remote(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(Out, "Нет ассетов")
			return nil
		}
		for _, a := range list {
			fmt.Fprintf(Out, "- %s  kind=%s  size=%d  updated=%s\n", a.Name, a.Kind, a.Size, a.UpdatedAt)
		}
		fmt.Fprintf(Out, "Всего: %d\n", len(list))
		return nil
	}

	cache, done, err := bootstrap.OpenAssetCache(cfg)
	if err != nil {
		return err
	}
	defer done()
	list, err := service.NewAssetClient(cfg.ServerURL, fsrepo.AuthFSStore{}, cache, nil).Cached()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет ассетов")
		return nil
	}
	for _, a := range list {
		fetched := time.Unix(a.FetchedAt, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(Out, "- %s  kind=%s  size=%d  fetched=%s\n", a.Name, a.Kind, a.Size, fetched)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(assetsCmd{}) }
