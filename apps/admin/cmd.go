package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/alrowad/institute/core/settings"
	"github.com/alrowad/institute/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB
	usrRepo     user.Repository
	settingsSvc *settings.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - apply database migrations (up, down, status, ...)")
	fmt.Println("  createadmin -name NAME -username USERNAME [-email EMAIL] - create an active admin account")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an account's password")
	fmt.Println("  seedcode - set the registration verification code")
	fmt.Println("  purge -table TABLE - wipe one table (requires verification code)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createAdminName := createAdminCmd.String("name", "", "The admin's display name.")
	createAdminUname := createAdminCmd.String("username", "", "The admin's username. The password will be prompted next.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email (optional).")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account's username or email. The password will be prompted next.")

	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)
	purgeTable := purgeCmd.String("table", "", "The table to wipe. The verification code will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminName == "" || *createAdminUname == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := promptSecret("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createAdminName, *createAdminUname, *createAdminEmail, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptSecret("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "seedcode":
		code, err := promptSecret("Enter verification code:")
		if err != nil {
			return err
		}
		if code == "" {
			return errHelp
		}
		return cli.settingsSvc.Seed(code)

	case "purge":
		if err := purgeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *purgeTable == "" {
			purgeCmd.Usage()
			return errHelp
		}
		code, err := promptSecret("Enter verification code:")
		if err != nil {
			return err
		}
		if code == "" {
			purgeCmd.Usage()
			return errHelp
		}
		return cli.settingsSvc.Purge(*purgeTable, code)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	secret, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
