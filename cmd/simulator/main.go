package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

const defaultPassword = "testpassword123"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "register":
		registerCmd(apiURL, args)
	case "session":
		sessionCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Account Simulator - Development tool for exercising the users API

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Register users and walk each through login, refresh, profile and logout
  register  Register users and print their credentials
  session   Check refresh rotation for an existing account
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8000)

EXAMPLES:
  # Register 3 users and run the whole session lifecycle for each
  simulator full --count=3

  # Create 5 accounts to log in with
  simulator register --count=5

  # Verify an existing account's refresh rotation
  simulator session --username=viewer_1_ab12 --password=testpassword123`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	count := fs.Int("count", 3, "Number of users to create")
	fs.Parse(args)

	if *count < 1 || *count > 50 {
		fmt.Println("Error: --count must be between 1 and 50")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Account Simulator: Full Flow ===")
	fmt.Println()

	for i := 1; i <= *count; i++ {
		fmt.Printf("[%d/%d] ", i, *count)
		user, err := client.RegisterUser(fmt.Sprintf("Sim%d", i), defaultPassword)
		if err != nil {
			fmt.Printf("FAILED to register\n  Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("registered %s\n", user.Username)

		if err := runSession(client, user.Username, defaultPassword); err != nil {
			fmt.Printf("  FAILED: %v\n", err)
			os.Exit(1)
		}

		profile, err := client.ChannelProfile(user.Username, "")
		if err != nil {
			fmt.Printf("  FAILED to load channel: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  channel page OK (%d subscribers)\n", profile.SubscribersCount)
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  ALL SESSION CHECKS PASSED")
	fmt.Println("=========================================")
}

func registerCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	count := fs.Int("count", 1, "Number of users to create")
	password := fs.String("password", defaultPassword, "Password for every account")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Printf("Registering %d users...\n\n", *count)
	for i := 0; i < *count; i++ {
		user, err := client.RegisterUser(fmt.Sprintf("User%d", i+1), *password)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			continue
		}
		fmt.Printf("  [%d/%d] %s / %s\n", i+1, *count, user.Username, *password)
	}
}

func sessionCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	username := fs.String("username", "", "Account username")
	password := fs.String("password", defaultPassword, "Account password")
	fs.Parse(args)

	if *username == "" {
		fmt.Println("Error: --username is required")
		fmt.Println("\nUsage: simulator session --username=NAME [--password=PASS]")
		os.Exit(1)
	}

	if err := runSession(NewAPIClient(apiURL), *username, *password); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done!")
}

// runSession logs in and checks the rotation rules: a refresh yields a new
// pair, the consumed token is rejected, and logout invalidates the latest one.
func runSession(client *APIClient, username, password string) error {
	login, err := client.Login(username, password)
	if err != nil {
		return err
	}
	fmt.Println("  login OK")

	me, err := client.CurrentUser(login.AccessToken)
	if err != nil {
		return err
	}
	if me.Username != username {
		return fmt.Errorf("current user is %q, expected %q", me.Username, username)
	}

	pair, err := client.Refresh(login.RefreshToken)
	if err != nil {
		return err
	}
	if pair.AccessToken == login.AccessToken || pair.RefreshToken == login.RefreshToken {
		return errors.New("refresh returned a token that was already issued")
	}
	fmt.Println("  refresh OK (new pair)")

	if _, err := client.Refresh(login.RefreshToken); !errors.Is(err, errStatus) {
		return fmt.Errorf("replaying a consumed refresh token was not rejected: %v", err)
	}
	fmt.Println("  replay rejected OK")

	if _, err := client.UpdateAccount(pair.AccessToken, me.FullName, me.Email); err != nil {
		return err
	}

	if _, err := client.WatchHistory(pair.AccessToken); err != nil {
		return err
	}

	if err := client.Logout(pair.AccessToken); err != nil {
		return err
	}
	if _, err := client.Refresh(pair.RefreshToken); !errors.Is(err, errStatus) {
		return fmt.Errorf("refresh after logout was not rejected: %v", err)
	}
	fmt.Println("  logout OK")

	return nil
}
