package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/provisioning/internal/gwctl"
	"github.com/edvin/provisioning/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "hash-password":
		fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
		cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
		fs.Parse(os.Args[2:])

		fmt.Fprint(os.Stderr, "Password: ")
		if err := gwctl.HashPassword(os.Stdin, os.Stdout, *cost); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "check-config":
		fs := flag.NewFlagSet("check-config", flag.ExitOnError)
		file := fs.String("f", os.Getenv("REGISTRY_FILE"), "Path to registry YAML file")
		ping := fs.Bool("ping", false, "Connect to every central server database")
		timeout := fs.Duration("timeout", 30*time.Second, "Timeout for database checks")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag or REGISTRY_FILE is required")
			fs.Usage()
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		if err := gwctl.CheckConfig(ctx, os.Stdout, *file, *ping); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "list":
		fs, client, base := gatewayFlags("list")
		fs.Parse(os.Args[2:])

		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: gwctl list [flags] <tlds|registrars|probeNodes>")
			os.Exit(1)
		}
		if err := gwctl.List(client(), *base, objectType(fs.Arg(0)), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "get", "delete":
		fs, client, base := gatewayFlags(os.Args[1])
		fs.Parse(os.Args[2:])

		if fs.NArg() != 2 {
			fmt.Fprintf(os.Stderr, "Usage: gwctl %s [flags] <tlds|registrars|probeNodes> <id>\n", os.Args[1])
			os.Exit(1)
		}
		op := gwctl.GetObject
		if os.Args[1] == "delete" {
			op = gwctl.DeleteObject
		}
		if err := op(client(), *base, objectType(fs.Arg(0)), fs.Arg(1), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "put":
		fs, client, base := gatewayFlags("put")
		file := fs.String("f", "-", "JSON object file, - for stdin")
		fs.Parse(os.Args[2:])

		if fs.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "Usage: gwctl put [flags] <tlds|registrars|probeNodes> <id>")
			os.Exit(1)
		}
		in := os.Stdin
		if *file != "-" {
			f, err := os.Open(*file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			in = f
		}
		if err := gwctl.PutObject(client(), *base, objectType(fs.Arg(0)), fs.Arg(1), in, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: gwctl <command> [flags]

Commands:
  hash-password   Read a password from stdin and print its bcrypt hash
  check-config    Validate a registry file (-f) and optionally ping databases (-ping)
  list            List all objects of one type through a running gateway
  get             Fetch one object
  put             Create or update one object from a JSON file (-f) or stdin
  delete          Delete one object`)
}

// gatewayFlags registers the connection flags shared by the object commands.
func gatewayFlags(name string) (*flag.FlagSet, func() *gwctl.Client, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	apiURL := fs.String("api", "http://localhost:8080", "Gateway base URL")
	base := fs.String("base", "/api/v1/provisioning", "Endpoint base path")
	user := fs.String("user", os.Getenv("GWCTL_USER"), "Username")
	password := fs.String("password", os.Getenv("GWCTL_PASSWORD"), "Password")
	return fs, func() *gwctl.Client { return gwctl.NewClient(*apiURL, *user, *password) }, base
}

func objectType(name string) model.ObjectType {
	t, ok := model.ParseObjectType(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown object type %q\n", name)
		os.Exit(1)
	}
	return t
}
