package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/ui"
)

var (
	accountEmail          string
	accountChangePassword bool
)

// accountCmd groups account management commands
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "manage your account",
	Long: `Change the email or password of your account, or delete it entirely.

Deletion is permanent: the account and every exchange it owns are removed
and cannot be recovered.`,
	Example: `  # Change the account email
  $ muhsinctl account update --email new@example.com

  # Change the password (prompted, never on the command line)
  $ muhsinctl account update --password

  # Delete the account and all its data
  $ muhsinctl account delete`,
}

// accountUpdateCmd changes the email, the password or both
var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "change your email or password",
	Long: `Change the email or password of your account. Fields you do not provide
are left as they are. An email already held by another account is refused.`,
	Args: cobra.NoArgs,
	RunE: runAccountUpdate,
}

// accountDeleteCmd deletes the account
var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "permanently delete your account",
	Long: `Permanently delete your account. Every exchange you own goes with it and
nothing can be recovered afterwards. You are asked to type your email to
confirm.`,
	Args: cobra.NoArgs,
	RunE: runAccountDelete,
}

func init() {
	accountUpdateCmd.Flags().StringVarP(&accountEmail, "email", "e", "", "New email address")
	accountUpdateCmd.Flags().BoolVarP(&accountChangePassword, "password", "p", false, "Prompt for a new password")
	accountUpdateCmd.SilenceUsage = true
	accountDeleteCmd.SilenceUsage = true

	accountCmd.AddCommand(accountUpdateCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	accountCmd.SilenceUsage = true
}

func runAccountUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	if accountEmail == "" && !accountChangePassword {
		ui.PrintError("nothing to update, pass --email and/or --password")
		return fmt.Errorf("nothing to update")
	}

	var password string
	if accountChangePassword {
		if err := survey.AskOne(&survey.Password{
			Message: "New password (8-100 characters):",
		}, &password, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read password: %v", err)
			return fmt.Errorf("input failed")
		}

		var confirm string
		if err := survey.AskOne(&survey.Password{
			Message: "Confirm new password:",
		}, &confirm, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read password: %v", err)
			return fmt.Errorf("input failed")
		}
		if password != confirm {
			ui.PrintError("passwords do not match")
			return fmt.Errorf("input failed")
		}
	}

	user, err := apiClient.UpdateProfile(ctx, accountEmail, password)
	if err != nil {
		reportRequestError(sess, "update profile", err)
		return fmt.Errorf("update failed")
	}

	ui.PrintSuccess("Profile updated")
	fmt.Printf("Email:   %s\n", user.Email)
	fmt.Printf("User ID: %s\n", user.ID)

	if accountEmail != "" {
		ui.PrintInfo("Run 'muhsinctl login %s' to refresh the stored identity.", sess.Server())
	}

	return nil
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, apiClient, err := requireSession()
	if err != nil {
		return err
	}

	email := ""
	if u := sess.User(); u != nil {
		email = u.Email
	}
	if email == "" {
		// The stored identity is enough for the confirmation prompt.
		me, err := apiClient.Me(ctx)
		if err != nil {
			reportRequestError(sess, "look up account", err)
			return fmt.Errorf("delete failed")
		}
		email = me.Email
	}

	ui.PrintWarning("This permanently deletes %s and every exchange it owns.", email)

	var typed string
	if err := survey.AskOne(&survey.Input{
		Message: fmt.Sprintf("Type %s to confirm:", email),
	}, &typed); err != nil {
		ui.PrintError("failed to read confirmation: %v", err)
		return fmt.Errorf("input failed")
	}
	if typed != email {
		ui.PrintInfo("Confirmation did not match, nothing deleted.")
		return nil
	}

	receipt, err := apiClient.DeleteAccount(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			ui.PrintError("account no longer exists")
		} else {
			reportRequestError(sess, "delete account", err)
		}
		return fmt.Errorf("delete failed")
	}

	// The token now points at a deleted account; drop it locally.
	_ = sess.Logout(ctx, nil)

	ui.PrintSuccessBox("✓ Account Deleted", fmt.Sprintf(`User ID:    %s
Deleted at: %s`, receipt.UserID, receipt.DeletedAt))

	return nil
}
