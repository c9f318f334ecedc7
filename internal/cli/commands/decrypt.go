package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"AssetKeeper/internal/cli/crypto"
	"AssetKeeper/internal/cli/service"
	"AssetKeeper/internal/config"
)

const (
	kindCredential = "credential"
	kindModel      = "model"
)

type decryptTextCmd struct{}

func (decryptTextCmd) Name() string        { return "decrypt-text" }
func (decryptTextCmd) Description() string { return "Decrypt a hex blob and print the text" }
func (decryptTextCmd) Usage() string       { return "decrypt-text <file|->" }

func (decryptTextCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	d, err := crypto.Decryptor(cfg.AESSecretKey)
	if err != nil {
		return err
	}
	h, err := crypto.ReadHexBlob(args[0], In)
	if err != nil {
		return err
	}
	text, err := d.DecryptTextContext(ctx, h)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, text)
	return nil
}

type decryptFileCmd struct{}

func (decryptFileCmd) Name() string        { return "decrypt-file" }
func (decryptFileCmd) Description() string { return "Decrypt a raw blob into a file" }
func (decryptFileCmd) Usage() string       { return "decrypt-file <in|-> <out>" }

func (decryptFileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	d, err := crypto.Decryptor(cfg.AESSecretKey)
	if err != nil {
		return err
	}
	raw, err := crypto.ReadInput(args[0], In)
	if err != nil {
		return err
	}
	plain, err := d.Decrypt(ctx, raw)
	if err != nil {
		return err
	}
	if err := crypto.WriteOutput(args[1], plain); err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ Расшифровано: %s (%d байт)\n", args[1], len(plain))
	return nil
}

type decryptFilesCmd struct{}

func (decryptFilesCmd) Name() string { return "decrypt-files" }
func (decryptFilesCmd) Description() string {
	return "Decrypt raw blobs in parallel into a directory"
}
func (decryptFilesCmd) Usage() string { return "decrypt-files <out-dir> <in...>" }

// Run пишет результат под базовым именем входа без расширения .enc/.blob.
// Ничего не пишется, если хотя бы один блоб не расшифровался
// или два входа дают одно имя результата.
func (decryptFilesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	outDir, inputs := args[0], args[1:]
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		name := outputName(in)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s both map to %s", prev, in, filepath.Join(outDir, name))
		}
		seen[name] = in
	}
	d, err := crypto.Decryptor(cfg.AESSecretKey)
	if err != nil {
		return err
	}
	blobs := make([][]byte, len(inputs))
	for i, in := range inputs {
		if blobs[i], err = os.ReadFile(in); err != nil {
			return err
		}
	}
	plains, err := service.DecryptAll(ctx, d, blobs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return err
	}
	for i, in := range inputs {
		out := filepath.Join(outDir, outputName(in))
		if err := crypto.WriteOutput(out, plains[i]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "✓ %s → %s (%d байт)\n", in, out, len(plains[i]))
	}
	return nil
}

func outputName(in string) string {
	base := filepath.Base(in)
	for _, ext := range []string{".enc", ".blob"} {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

func init() {
	RegisterCmd(decryptTextCmd{})
	RegisterCmd(decryptFileCmd{})
	RegisterCmd(decryptFilesCmd{})
}
