// Package hcl_adapter loads pipeline declarations from HCL files into the
// format-agnostic config.Model. It is the only package that knows about HCL.
//
// A file contains any number of pipeline blocks:
//
//	pipeline "update" {
//	  type              = "normal"
//	  max_child_threads = min(cpu_count - 1, 4)
//
//	  checkpoint "physics_done" {
//	    after = [task.integrate]
//	  }
//
//	  task "integrate" {
//	    run    = "physics.integrate"
//	    reads  = ["velocity"]
//	    writes = ["position"]
//	  }
//	}
//
// References in depends_on, dependency_of, after and before may be bare
// names, task.NAME or checkpoint.NAME traversals, or strings in the same forms.
package hcl_adapter
