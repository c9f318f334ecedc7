package commands

import (
	"context"
	"fmt"

	"AssetKeeper/internal/cli/crypto"
	"AssetKeeper/internal/config"
)

type sealCmd struct{}

func (sealCmd) Name() string { return "seal" }
func (sealCmd) Description() string {
	return "Seal a file into an envelope blob (credential → hex)"
}
func (sealCmd) Usage() string { return "seal <credential|model> <in|-> <out>" }

func (sealCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	kind, in, out := args[0], args[1], args[2]
	if kind != kindCredential && kind != kindModel {
		return ErrUsage
	}
	s, err := crypto.Sealer(cfg.AESSecretKey)
	if err != nil {
		return err
	}
	plain, err := crypto.ReadInput(in, In)
	if err != nil {
		return err
	}
	var sealed []byte
	if kind == kindCredential {
		h, err := s.SealHex(plain)
		if err != nil {
			return err
		}
		sealed = []byte(h)
	} else {
		if sealed, err = s.Seal(plain); err != nil {
			return err
		}
	}
	if err := crypto.WriteOutput(out, sealed); err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ Запечатано: %s (%d байт)\n", out, len(sealed))
	return nil
}

func init() { RegisterCmd(sealCmd{}) }
