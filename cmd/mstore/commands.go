// cmd/mstore/commands.go
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/tamzrod/mstore/internal/eeprom"
)

var (
	checkFlag = &cli.BoolFlag{
		Name:  "check",
		Usage: "verify the page checksum after the operation",
	}
	hexFlag = &cli.BoolFlag{
		Name:  "hex",
		Usage: "raw hex instead of decoded fields",
	}
	yesFlag = &cli.BoolFlag{
		Name:  "yes",
		Usage: "confirm a destructive whole-chip operation",
	}

	statsCommand = &cli.Command{
		Action:  stats,
		Name:    "stats",
		Aliases: []string{"info"},
		Usage:   "Summarize messages, free pages and wear from page headers",
	}
	countCommand = &cli.Command{
		Action: count,
		Name:   "count",
		Usage:  "Print the number of stored messages",
	}
	writesCommand = &cli.Command{
		Action:    writes,
		Name:      "writes",
		Usage:     "Print the write count of a page",
		ArgsUsage: "<page>",
	}
	lengthCommand = &cli.Command{
		Action:    length,
		Name:      "length",
		Usage:     "Print the stored message length of a page",
		ArgsUsage: "<page>",
	}
	readCommand = &cli.Command{
		Action:    read,
		Name:      "read",
		Usage:     "Print the message stored in a page",
		ArgsUsage: "<page>",
		Flags:     []cli.Flag{checkFlag},
	}
	writeCommand = &cli.Command{
		Action:    write,
		Name:      "write",
		Usage:     "Write a message into a specific page",
		ArgsUsage: "<page> <message>",
	}
	storeCommand = &cli.Command{
		Action:    store,
		Name:      "store",
		Usage:     "Store a message in the first free page",
		ArgsUsage: "<message>",
		Flags:     []cli.Flag{checkFlag},
	}
	clearCommand = &cli.Command{
		Action:    clearPage,
		Name:      "clear",
		Usage:     "Free a page",
		ArgsUsage: "<page>",
		Flags:     []cli.Flag{checkFlag},
	}
	clearAllCommand = &cli.Command{
		Action: clearAll,
		Name:   "clear-all",
		Usage:  "Free every page; also formats a factory-fresh chip",
	}
	smashCommand = &cli.Command{
		Action:    smash,
		Name:      "smash",
		Usage:     "Overwrite a page's length, checksum and payload with zero bytes",
		ArgsUsage: "<page>",
	}
	smashAllCommand = &cli.Command{
		Action: smashAll,
		Name:   "smash-all",
		Usage:  "Overwrite every page's length, checksum and payload with zero bytes",
		Flags:  []cli.Flag{yesFlag},
		Description: `Destroys every message irrecoverably. Wear counters are kept.
Requires --yes.`,
	}
	dumpCommand = &cli.Command{
		Action:    dump,
		Name:      "dump",
		Usage:     "Print a page for inspection",
		ArgsUsage: "<page>",
		Flags:     []cli.Flag{hexFlag},
	}
)

// withStore opens the station for one command and closes it afterwards.
func withStore(ctx *cli.Context, fn func(*station) error) error {
	st, err := openStation(getRuntime(ctx))
	if err != nil {
		return err
	}
	err = fn(st)
	if cerr := st.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func pageArg(ctx *cli.Context, i int) (int, error) {
	if ctx.NArg() <= i {
		return 0, fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	page, err := strconv.Atoi(ctx.Args().Get(i))
	if err != nil {
		return 0, fmt.Errorf("page %q: %w", ctx.Args().Get(i), err)
	}
	return page, nil
}

func stats(ctx *cli.Context) error {
	return withStore(ctx, func(st *station) error {
		s, err := st.store.Stats()
		if err != nil {
			return err
		}
		w := ctx.App.Writer
		fmt.Fprintf(w, "address:     0x%02x / 0x%02x\n", st.store.Address(), st.store.Address()|eeprom.BlockSelectBit)
		fmt.Fprintf(w, "pages:       %d x %d bytes\n", eeprom.PageCount, eeprom.PageSize)
		fmt.Fprintf(w, "messages:    %d\n", s.Messages)
		fmt.Fprintf(w, "free:        %d\n", s.FreePages)
		fmt.Fprintf(w, "corrupt:     %d\n", s.CorruptPages)
		fmt.Fprintf(w, "worn:        %d\n", s.WornPages)
		fmt.Fprintf(w, "max writes:  %d (page %d)\n", s.MaxWriteCount, s.MaxWritePage)
		return nil
	})
}

func count(ctx *cli.Context) error {
	return withStore(ctx, func(st *station) error {
		n, err := st.store.MessagesCount()
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, n)
		return nil
	})
}

func writes(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		n, err := st.store.WritesCount(page)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, n)
		return nil
	})
}

func length(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		n, err := st.store.MessageLength(page)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, n)
		return nil
	})
}

func read(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		if ctx.Bool(checkFlag.Name) {
			ok, err := st.store.VerifyPage(page)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("page %d: checksum mismatch", page)
			}
		}

		buf := make([]byte, eeprom.MaxMessageLength)
		n, err := st.store.RetrieveMessage(page, buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "%s\n", buf[:n])
		return nil
	})
}

func write(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	if ctx.NArg() != 2 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	return withStore(ctx, func(st *station) error {
		return st.store.WriteMessage(page, []byte(ctx.Args().Get(1)))
	})
}

func store(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	msg := []byte(ctx.Args().Get(0))

	return withStore(ctx, func(st *station) error {
		if !ctx.Bool(checkFlag.Name) {
			page, err := st.store.StoreMessage(msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, page)
			return nil
		}

		page, ok, err := st.store.StoreMessageCheck(msg)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("page %d: checksum mismatch after store", page)
		}
		fmt.Fprintln(ctx.App.Writer, page)
		return nil
	})
}

func clearPage(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		if !ctx.Bool(checkFlag.Name) {
			return st.store.ClearPage(page)
		}
		return clearChecked(st.store, page)
	})
}

// clearChecked clears page and fails if it still reads as holding a message.
func clearChecked(s interface{ ClearPageCheck(int) (bool, error) }, page int) error {
	ok, err := s.ClearPageCheck(page)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("page %d: page still holds a message after clear", page)
	}
	return nil
}

func clearAll(ctx *cli.Context) error {
	return withStore(ctx, func(st *station) error {
		return st.store.ClearAllPages()
	})
}

func smash(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		return st.store.SmashPage(page)
	})
}

func smashAll(ctx *cli.Context) error {
	if !ctx.Bool(yesFlag.Name) {
		return errors.New("smash-all destroys every message; pass --yes")
	}
	return withStore(ctx, func(st *station) error {
		return st.store.SmashAllPages()
	})
}

func dump(ctx *cli.Context) error {
	page, err := pageArg(ctx, 0)
	if err != nil {
		return err
	}
	return withStore(ctx, func(st *station) error {
		if ctx.Bool(hexFlag.Name) {
			return st.store.DumpPageHex(ctx.App.Writer, page)
		}
		return st.store.DumpPageHuman(ctx.App.Writer, page)
	})
}
