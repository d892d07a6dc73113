// Command sumdump pretty-prints a sumcodec wire stream's tag structure
// without needing the reader's Go type declarations, grounded on vom's
// own dump.go stream pretty-printer adapted to spec.md's tag alphabet.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/sumcodec/sumcodec"
	"github.com/sumcodec/sumcodec/codec"
	"github.com/sumcodec/sumcodec/wire"
)

func main() {
	app := cli.NewApp()
	app.Name = "sumdump"
	app.Usage = "pretty-print a sumcodec wire stream"
	app.Version = sumcodec.Version.String()
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "no-color", Usage: "disable ANSI color output"},
	}
	app.Action = func(c *cli.Context) error {
		if c.Bool("no-color") {
			color.NoColor = true
		}
		args := c.Args()
		if len(args) != 1 {
			return cli.NewExitError("usage: sumdump <file>", 1)
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		d := newDumper(data)
		verByte, err := d.buf.GetByte()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		fmt.Println(tagColor.Sprintf("FormatVersion"), valColor.Sprint(verByte))
		if err := d.dumpValue(0); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	tagColor  = color.New(color.FgCyan, color.Bold)
	nameColor = color.New(color.FgYellow)
	valColor  = color.New(color.FgGreen)
)

type dumper struct {
	buf   *wire.Buffer
	dedup *codec.Dedup
}

func newDumper(data []byte) *dumper {
	return &dumper{buf: wire.Wrap(data), dedup: codec.NewDedup()}
}

func indent(depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	return out
}

// dumpValue prints one self-delimited wire node at depth, mirroring
// codec.readCtx.skipValue's tag-driven traversal but emitting output
// instead of discarding bytes.
func (d *dumper) dumpValue(depth int) error {
	tag, err := d.buf.GetByte()
	if err != nil {
		return err
	}
	t := wire.Tag(tag)
	prefix := indent(depth) + tagColor.Sprint(t.String())

	switch t {
	case wire.TagNull:
		fmt.Println(prefix)
		return nil
	case wire.TagBool:
		v, err := d.buf.GetByte()
		fmt.Println(prefix, valColor.Sprint(v != 0))
		return err
	case wire.TagI8:
		v, err := d.buf.GetInt8()
		fmt.Println(prefix, valColor.Sprint(v))
		return err
	case wire.TagU16Char, wire.TagI16:
		v, err := d.buf.GetUint16()
		fmt.Println(prefix, valColor.Sprint(v))
		return err
	case wire.TagI32:
		v, err := d.buf.GetInt32()
		fmt.Println(prefix, valColor.Sprint(v))
		return err
	case wire.TagI64:
		v, err := d.buf.GetInt64()
		fmt.Println(prefix, valColor.Sprint(v))
		return err
	case wire.TagF32:
		v, err := d.buf.GetFloat32()
		fmt.Println(prefix, valColor.Sprint(v))
		return err
	case wire.TagF64:
		v, err := d.buf.GetFloat64()
		fmt.Println(prefix, valColor.Sprint(v))
		return err
	case wire.TagString:
		n, err := wire.GetVarint(d.buf)
		if err != nil {
			return err
		}
		raw, err := d.buf.GetBytes(int(n))
		if err != nil {
			return err
		}
		fmt.Println(prefix, valColor.Sprintf("%q", string(raw)))
		return nil
	case wire.TagUuid:
		raw, err := d.buf.GetBytes(16)
		if err != nil {
			return err
		}
		fmt.Println(prefix, valColor.Sprintf("%x", raw))
		return nil
	case wire.TagEnum:
		name, err := d.dedup.ReadName(d.buf)
		if err != nil {
			return err
		}
		idx, err := wire.GetVarint(d.buf)
		if err != nil {
			return err
		}
		fmt.Println(prefix, nameColor.Sprint(name), valColor.Sprint(idx))
		return nil
	case wire.TagRecord:
		name, err := d.dedup.ReadName(d.buf)
		if err != nil {
			return err
		}
		fp, err := d.buf.GetInt64()
		if err != nil {
			return err
		}
		n, err := wire.GetVarint(d.buf)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s fingerprint=%x fields=%d\n", prefix, nameColor.Sprint(name), uint64(fp), n)
		for i := int64(0); i < n; i++ {
			if err := d.dumpValue(depth + 1); err != nil {
				return err
			}
		}
		return nil
	case wire.TagInterface:
		name, err := d.dedup.ReadName(d.buf)
		if err != nil {
			return err
		}
		fmt.Println(prefix, nameColor.Sprint(name))
		return d.dumpValue(depth + 1)
	case wire.TagArray, wire.TagList:
		n, err := wire.GetVarint(d.buf)
		if err != nil {
			return err
		}
		fmt.Printf("%s len=%d\n", prefix, n)
		for i := int64(0); i < n; i++ {
			if err := d.dumpValue(depth + 1); err != nil {
				return err
			}
		}
		return nil
	case wire.TagMap:
		n, err := wire.GetVarint(d.buf)
		if err != nil {
			return err
		}
		fmt.Printf("%s len=%d\n", prefix, n)
		for i := int64(0); i < n; i++ {
			if err := d.dumpValue(depth + 1); err != nil {
				return err
			}
			if err := d.dumpValue(depth + 1); err != nil {
				return err
			}
		}
		return nil
	case wire.TagOptional:
		fmt.Println(prefix)
		return d.dumpValue(depth + 1)
	default:
		return fmt.Errorf("sumdump: unrecognized tag 0x%02x at offset %d", tag, d.buf.Position()-1)
	}
}
