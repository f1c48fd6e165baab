package approval

// applyOptimistic applies a local mutation before the persistence call and
// undoes it when persistence fails. snapshot is taken before mutate runs; on
// persist error the snapshot is handed to restore verbatim and the error is
// returned. The state type only needs a copy and a put-back, which keeps the
// protocol reusable for any mutable view.
func applyOptimistic[S any](snapshot func() S, restore func(S), mutate func(), persist func() error) error {
	before := snapshot()
	mutate()
	if err := persist(); err != nil {
		restore(before)
		return err
	}
	return nil
}
