// Command rsarecover recovers the private key of an RSA public key whose prime
// factors are close together, and decrypts a textbook RSA ciphertext with it.
//
//	rsarecover -pub key.pem -ciphertext c.hex [-out key.xml -format xml]
//	rsarecover -generate -bits 512 -message "attack at dawn"
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/closeprimes/rsarecover"
	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/fermat"
	"github.com/closeprimes/rsarecover/keyfile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rsarecover", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		pubFile       = fs.String("pub", "", "path to the public key (PEM or XML)")
		cipherFile    = fs.String("ciphertext", "", "path to the ciphertext (hex or raw bytes)")
		cipherFormat  = fs.String("ciphertext-format", "auto", "ciphertext encoding: auto (hex if valid, else raw), hex or raw")
		maxIterations = fs.Uint64("max-iterations", fermat.DefaultMaxIterations, "maximum number of factorization iterations")
		timeout       = fs.Duration("timeout", 0, "abort the factorization after this long (0: no limit)")
		outFile       = fs.String("out", "", "write the recovered private key to this file")
		format        = fs.String("format", "xml", "private key format for -out: xml, json, cbor or pem")
		force         = fs.Bool("force", false, "overwrite an existing -out file")
		verbose       = fs.Bool("v", false, "verbose logging")
		generate      = fs.Bool("generate", false, "generate a weak key and encrypt -message with it")
		bits          = fs.Uint("bits", 512, "prime size in bits for -generate")
		message       = fs.String("message", "", "message to encrypt with -generate")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rsarecover.Logger.SetOutput(stderr)
	if *verbose {
		rsarecover.Logger.SetLevel(logrus.DebugLevel)
	}

	var err error
	if *generate {
		err = runGenerate(stdout, *bits, *message)
	} else {
		if *pubFile == "" || *cipherFile == "" {
			fmt.Fprintln(stderr, "usage: rsarecover -pub <key.pem> -ciphertext <file> [options]")
			fs.PrintDefaults()
			return 2
		}
		var f keyfile.Format
		var enc keyfile.CiphertextEncoding
		if f, err = keyfile.ParseFormat(*format); err == nil {
			if enc, err = keyfile.ParseCiphertextEncoding(*cipherFormat); err == nil {
				err = runRecover(stdout, recoverOptions{
					pubFile:       *pubFile,
					cipherFile:    *cipherFile,
					cipherFormat:  enc,
					maxIterations: *maxIterations,
					timeout:       *timeout,
					outFile:       *outFile,
					format:        f,
					force:         *force,
				})
			}
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "rsarecover: %v\n", err)
		if errors.Is(err, rsarecover.ErrFactorizationExhausted) {
			fmt.Fprintln(stderr, "the prime factors may not be close together; try a larger -max-iterations or -timeout")
		}
		return 1
	}
	return 0
}

type recoverOptions struct {
	pubFile, cipherFile string
	cipherFormat        keyfile.CiphertextEncoding
	maxIterations       uint64
	timeout             time.Duration
	outFile             string
	format              keyfile.Format
	force               bool
}

func runRecover(stdout io.Writer, opts recoverOptions) error {
	pk, err := keyfile.LoadPublicKey(opts.pubFile)
	if err != nil {
		return err
	}
	c, err := keyfile.LoadCiphertextEncoded(opts.cipherFile, opts.cipherFormat)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	fermatOpts := &fermat.Options{MaxIterations: opts.maxIterations}
	if opts.outFile == "" {
		m, err := rsarecover.Recover(ctx, pk, c, fermatOpts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%s\n", keyfile.PlaintextBytes(m))
		return err
	}

	sk, err := rsarecover.ReconstructKey(ctx, pk, fermatOpts)
	if err != nil {
		return err
	}
	defer sk.Wipe()

	if err = keyfile.SavePrivateKey(opts.outFile, sk, opts.format, opts.force); err != nil {
		return err
	}
	m, err := rsarecover.Decrypt(sk, c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", keyfile.PlaintextBytes(m))
	return err
}

func runGenerate(stdout io.Writer, bits uint, message string) error {
	sk, err := rsarecover.GenerateCloseKey(rand.Reader, bits, rsarecover.DefaultExponent)
	if err != nil {
		return err
	}
	defer sk.Wipe()

	pk := sk.Public()
	c, err := rsarecover.Encrypt(pk, new(big.Int).SetBytes([]byte(message)))
	if err != nil {
		return errors.WrapPrefix(err, "message too long for key", 0)
	}

	pemBytes, err := keyfile.MarshalPemPublicKey(pk)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s%s\n", pemBytes, c.Text(16))
	return err
}
