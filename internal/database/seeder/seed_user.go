package seeder

import (
	"context"
	"errors"

	authuc "learnmap/internal/usecase/auth"
)

const (
	DemoEmail    = "demo@learnmap.local"
	DemoPassword = "learnmap-demo"
)

// DemoUserSeeder registers the demo account, or logs into it when it
// already exists.
type DemoUserSeeder struct {
	Email    string
	Password string
}

func (DemoUserSeeder) Name() string { return "demo_user" }

func (s DemoUserSeeder) Run(ctx context.Context, st *State) error {
	if st.Accounts == nil {
		return errors.New("no account service")
	}
	email, password := s.Email, s.Password
	if email == "" {
		email = DemoEmail
	}
	if password == "" {
		password = DemoPassword
	}

	sess, err := st.Accounts.Register(ctx, authuc.RegisterInput{Email: email, Password: password, DisplayName: "Demo Learner"})
	if errors.Is(err, authuc.ErrEmailAlreadyRegistered) {
		sess, err = st.Accounts.Login(ctx, authuc.LoginInput{Email: email, Password: password})
	}
	if err != nil {
		return err
	}
	st.UserID = sess.User.ID.String()
	return nil
}
