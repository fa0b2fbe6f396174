package bine_test

import (
	"fmt"

	"github.com/aretw0/bine"
	"github.com/aretw0/bine/pkg/domain"
)

func ExampleNew() {
	list := bine.New([]string{"alpha", "beta"})
	defer list.Close()

	list.SubscribeChanges(func(c domain.Change[string]) {
		for _, edit := range c.Flatten() {
			fmt.Printf("%s %q at %d\n", edit.Kind, edit.Value, edit.Index)
		}
	})
	list.SubscribeSnapshots(func(s []string) {
		fmt.Println("snapshot:", s)
	})

	list.Append("gamma")
	list.RemoveFirst()

	// Output:
	// insert "gamma" at 2
	// snapshot: [alpha beta gamma]
	// remove "alpha" at 0
	// snapshot: [beta gamma]
}

func ExampleCollection_Replace() {
	list := bine.New([]int{1, 2, 3, 4})
	defer list.Close()

	list.SubscribeChanges(func(c domain.Change[int]) {
		fmt.Println("edits:", len(c.Edits))
	})

	if err := list.Replace(1, []int{9, 8}); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(list.Value())

	// Output:
	// edits: 4
	// [1 9 8 4]
}
