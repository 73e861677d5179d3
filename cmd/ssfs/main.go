// Command ssfs is the command surface described in spec.md §6.3. It reads
// one command per line from stdin for as long as stdin stays open, so
// "mount", "create", "write", ... share process state the way the spec's
// note about there being no persisted mounted state between OS-level
// invocations implies: the harness drives this as a single long-running
// process, not one process per command.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tinyfs/ssfs"
	"github.com/tinyfs/ssfs/presets"
	"github.com/tinyfs/ssfs/vdisk"
	"github.com/urfave/cli/v2"
)

// session holds the process-wide state §6.3 says is a singleton: at most one
// mounted volume, the backing device, and the image path it was opened from.
type session struct {
	volume   *ssfs.Volume
	device   ssfs.BlockDevice
	path     string
	lastFail bool
}

func main() {
	s := &session{}
	app := s.newApp()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args := append([]string{"ssfs"}, strings.Fields(line)...)
		if err := app.Run(args); err != nil {
			s.lastFail = true
			fmt.Fprintln(os.Stderr, err.Error())
		} else {
			s.lastFail = false
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("fatal error reading commands: %s", err.Error())
	}

	if s.volume != nil && s.volume.IsMounted() {
		_ = s.volume.Unmount()
	}
	if s.lastFail {
		os.Exit(1)
	}
}

func (s *session) newApp() *cli.App {
	return &cli.App{
		Usage: "Inspect and manipulate SSFS volumes",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create or wipe an image",
				ArgsUsage: "IMAGE INODES",
				Action:    s.formatCmd,
			},
			{
				Name:      "mount",
				Usage:     "Mount an existing image",
				ArgsUsage: "IMAGE",
				Action:    s.mountCmd,
			},
			{
				Name:   "unmount",
				Usage:  "Unmount the current volume",
				Action: s.unmountCmd,
			},
			{
				Name:   "create",
				Usage:  "Allocate a new, empty inode",
				Action: s.createCmd,
			},
			{
				Name:      "delete",
				Usage:     "Free an inode and its blocks",
				ArgsUsage: "INODE",
				Action:    s.deleteCmd,
			},
			{
				Name:      "stat",
				Usage:     "Print an inode's size",
				ArgsUsage: "INODE",
				Action:    s.statCmd,
			},
			{
				Name:      "read",
				Usage:     "Read bytes from an inode",
				ArgsUsage: "INODE OFFSET LENGTH",
				Action:    s.readCmd,
			},
			{
				Name:      "write",
				Usage:     "Write bytes to an inode",
				ArgsUsage: "INODE OFFSET DATA",
				Action:    s.writeCmd,
			},
		},
	}
}

func (s *session) formatCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: format IMAGE INODES|PRESET")
	}
	if s.volume != nil {
		return reportErr(ssfs.NewError(ssfs.ErrDiskAlreadyMounted))
	}
	path := c.Args().Get(0)
	spec := c.Args().Get(1)

	inodes, totalBlocks, err := resolveFormatSpec(spec)
	if err != nil {
		return err
	}

	device, err := vdisk.OpenFile(path, totalBlocks)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", path, err)
	}
	defer device.Close()

	if sErr := ssfs.Format(device, inodes); sErr != nil {
		return reportErr(sErr)
	}
	return device.Sync()
}

// resolveFormatSpec accepts either a raw inode count or the slug of a named
// preset from package presets, in which case the volume's block count also
// comes from the preset instead of needing to be given explicitly.
func resolveFormatSpec(spec string) (inodes uint32, totalBlocks uint32, err error) {
	if n, convErr := strconv.ParseUint(spec, 10, 32); convErr == nil {
		return uint32(n), 65536, nil
	}

	geometry, presetErr := presets.Get(spec)
	if presetErr != nil {
		return 0, 0, fmt.Errorf("INODES must be a number or a known preset slug: %w", presetErr)
	}
	return geometry.Inodes, geometry.TotalBlocks, nil
}

func (s *session) mountCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: mount IMAGE")
	}
	if s.volume != nil {
		return reportErr(ssfs.NewError(ssfs.ErrDiskAlreadyMounted))
	}
	path := c.Args().Get(0)

	device, err := vdisk.OpenFile(path, 0)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", path, err)
	}

	volume := ssfs.NewVolume(device)
	if mErr := volume.Mount(); mErr != nil {
		device.Close()
		return reportErr(mErr)
	}

	s.volume = volume
	s.device = device
	s.path = path
	return nil
}

func (s *session) unmountCmd(c *cli.Context) error {
	if s.volume == nil {
		return fmt.Errorf("no volume is mounted")
	}
	err := s.volume.Unmount()
	s.volume = nil
	s.device = nil
	if err != nil {
		return reportErr(err)
	}
	return nil
}

func (s *session) createCmd(c *cli.Context) error {
	v, err := s.requireMounted()
	if err != nil {
		return err
	}
	i, cErr := v.Create()
	if cErr != nil {
		return reportErr(cErr)
	}
	fmt.Println(i)
	return nil
}

func (s *session) deleteCmd(c *cli.Context) error {
	v, err := s.requireMounted()
	if err != nil {
		return err
	}
	i, parseErr := parseInode(c, 0)
	if parseErr != nil {
		return parseErr
	}
	if dErr := v.Delete(i); dErr != nil {
		return reportErr(dErr)
	}
	return nil
}

func (s *session) statCmd(c *cli.Context) error {
	v, err := s.requireMounted()
	if err != nil {
		return err
	}
	i, parseErr := parseInode(c, 0)
	if parseErr != nil {
		return parseErr
	}
	size, sErr := v.Stat(i)
	if sErr != nil {
		return reportErr(sErr)
	}
	fmt.Println(size)
	return nil
}

func (s *session) readCmd(c *cli.Context) error {
	v, err := s.requireMounted()
	if err != nil {
		return err
	}
	if c.Args().Len() != 3 {
		return fmt.Errorf("usage: read INODE OFFSET LENGTH")
	}
	i, parseErr := parseInode(c, 0)
	if parseErr != nil {
		return parseErr
	}
	offset, oErr := strconv.ParseInt(c.Args().Get(1), 10, 64)
	if oErr != nil {
		return fmt.Errorf("invalid offset: %w", oErr)
	}
	length, lErr := strconv.Atoi(c.Args().Get(2))
	if lErr != nil {
		return fmt.Errorf("invalid length: %w", lErr)
	}

	buf := make([]byte, length)
	n, rErr := v.Read(i, buf, offset)
	if rErr != nil {
		return reportErr(rErr)
	}
	fmt.Println(string(buf[:n]))
	return nil
}

func (s *session) writeCmd(c *cli.Context) error {
	v, err := s.requireMounted()
	if err != nil {
		return err
	}
	if c.Args().Len() < 3 {
		return fmt.Errorf("usage: write INODE OFFSET DATA")
	}
	i, parseErr := parseInode(c, 0)
	if parseErr != nil {
		return parseErr
	}
	offset, oErr := strconv.ParseInt(c.Args().Get(1), 10, 64)
	if oErr != nil {
		return fmt.Errorf("invalid offset: %w", oErr)
	}
	data := strings.Join(c.Args().Slice()[2:], " ")

	n, wErr := v.Write(i, []byte(data), offset)
	if wErr != nil {
		return reportErr(wErr)
	}
	fmt.Println(n)
	return nil
}

func (s *session) requireMounted() (*ssfs.Volume, error) {
	if s.volume == nil {
		return nil, fmt.Errorf("no volume is mounted")
	}
	return s.volume, nil
}

func parseInode(c *cli.Context, argIndex int) (uint32, error) {
	n, err := strconv.ParseUint(c.Args().Get(argIndex), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid inode number: %w", err)
	}
	return uint32(n), nil
}

// reportErr renders an *ssfs.Error the way spec.md §7 requires: a
// human-readable message including the numeric code.
func reportErr(err *ssfs.Error) error {
	return fmt.Errorf("%s (code %d)", err.Error(), err.Code)
}
