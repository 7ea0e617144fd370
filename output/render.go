package output

func (server *Server) onFrame(out *Output) {
	if out.removed {
		return
	}

	err := server.renderer.Attach(out.Device)
	if err != nil {
		server.cfg.Log.WithField("output", out.Device.Name()).WithError(err).Trace("skip frame")
		return
	}

	size := out.Device.EffectiveResolution()
	server.renderer.Begin(out.Device, size)
	server.renderer.Clear(server.cfg.Color)
	server.renderer.End()

	// A failed commit drops this frame. The next frame event retries.
	err = out.Device.Commit()
	if err != nil {
		server.cfg.Log.WithField("output", out.Device.Name()).WithError(err).Debug("commit frame")
	}

	out.lastFrame = server.cfg.Now()
	out.frames++
}
