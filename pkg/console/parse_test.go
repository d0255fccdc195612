package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`User.all()`, `all User`},
		{`User.count()`, `count User`},
		{`Place.create()`, `create Place`},
		{`User.show("42")`, `show User 42`},
		{`User.destroy("42")`, `destroy User 42`},
		{`User.update("42", "first_name", "Betty")`, `update User 42 first_name "Betty"`},
		{`User.update("42", first_name, 89)`, `update User 42 first_name 89`},
		{`City.update("7", "name", "South Lake, CA")`, `update City 7 name "South Lake, CA"`},
		{`User.update("42", {"age": 3, "name": "x"})`, `update User 42 {"age": 3, "name": "x"}`},
		{`User.show(42)`, `show User 42`},
		{`show User 42`, `show User 42`},
		{`User.all`, `User.all`},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, rewrite(tc.in))
		})
	}
}

func TestValueToken(t *testing.T) {
	assert.Equal(t, `"South Lake"`, valueToken(`"South Lake" trailing`))
	assert.Equal(t, `89`, valueToken(`89 extra`))
	assert.Equal(t, `"open`, valueToken(`"open`))
}

func TestSplitCommand(t *testing.T) {
	cmd, args := splitCommand("  update  User 1 name x ")
	assert.Equal(t, "update", cmd)
	assert.Equal(t, "User 1 name x", args)

	cmd, args = splitCommand("quit")
	assert.Equal(t, "quit", cmd)
	assert.Equal(t, "", args)
}
